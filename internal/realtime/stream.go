package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
	"github.com/utafrali/LibraryGo/pkg/httputil"
)

// DefaultHeartbeat is the interval of keep-alive comments on idle streams.
const DefaultHeartbeat = 15 * time.Second

// Stream serves notifications from Channel as Server-Sent Events.
type Stream struct {
	client    redis.UniversalClient
	heartbeat time.Duration
	logger    *slog.Logger
	done      chan struct{}
	closeOnce sync.Once
}

// NewStream creates an SSE handler reading from client. A non-positive
// heartbeat uses DefaultHeartbeat.
func NewStream(client redis.UniversalClient, heartbeat time.Duration, logger *slog.Logger) *Stream {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Stream{client: client, heartbeat: heartbeat, logger: logger, done: make(chan struct{})}
}

// Close ends every open stream. Register it with http.Server.RegisterOnShutdown
// so that graceful shutdown does not wait for subscribers to disconnect.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// ServeHTTP streams notifications until the client disconnects. The optional
// "events" query parameter is a comma separated list of event types; when
// absent every type is streamed.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types, err := parseTypes(r.URL.Query().Get("events"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), s.logger)
		return
	}

	ctx := r.Context()
	sub := s.client.Subscribe(ctx, Channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to subscribe to notifications", slog.String("error", err.Error()))
		httputil.WriteError(w, r, apperrors.Unavailable("notification stream"), s.logger)
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.ErrorContext(ctx, "response does not support streaming", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	msgs := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				s.logger.WarnContext(ctx, "dropping malformed notification", slog.String("error", err.Error()))
				continue
			}
			if types != nil && !slices.Contains(types, n.Type) {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", n.EventID, n.Type, msg.Payload); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// parseTypes returns the requested event types, or nil for all of them.
func parseTypes(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var types []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !knownTypes[t] {
			return nil, fmt.Errorf("unknown event type %q", t)
		}
		types = append(types, t)
	}
	return types, nil
}
