package domain

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// upsertByID replaces the element with v's id, or appends v. Unsaved values
// (id 0) are always appended.
func upsertByID[T any](s []T, v T, id func(T) int64) []T {
	if id(v) == 0 {
		return append(s, v)
	}
	for i := range s {
		if id(s[i]) == id(v) {
			s[i] = v
			return s
		}
	}
	return append(s, v)
}

func removeByID[T any](s []T, target int64, id func(T) int64) ([]T, bool) {
	for i := range s {
		if id(s[i]) == target {
			return append(s[:i], s[i+1:]...), true
		}
	}
	return s, false
}
