package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

// NewSchema builds the catalog schema with its fields resolved by r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	var authorType, bookType, genreType, reviewType *graphql.Object

	authorType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(a *domain.Author) any { return a.ID })},
				"name":        {Type: graphql.NewNonNull(graphql.String), Resolve: field(func(a *domain.Author) any { return a.Name })},
				"biography":   {Type: graphql.String, Resolve: field(func(a *domain.Author) any { return a.Biography })},
				"dateOfBirth": {Type: graphql.DateTime, Resolve: field(func(a *domain.Author) any { return a.DateOfBirth })},
				"nationality": {Type: graphql.String, Resolve: field(func(a *domain.Author) any { return a.Nationality })},
				"imageUrl":    {Type: graphql.String, Resolve: field(func(a *domain.Author) any { return a.ImageURL })},
				"books":       {Type: nonNullList(bookType), Resolve: r.authorBooks},
				"bookCount":   {Type: graphql.NewNonNull(graphql.Int), Resolve: r.authorBookCount},
			}
		}),
	})

	bookType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Book",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":            {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(b *domain.Book) any { return b.ID })},
				"title":         {Type: graphql.NewNonNull(graphql.String), Resolve: field(func(b *domain.Book) any { return b.Title })},
				"isbn":          {Type: graphql.String, Resolve: field(func(b *domain.Book) any { return b.ISBN })},
				"description":   {Type: graphql.String, Resolve: field(func(b *domain.Book) any { return b.Description })},
				"publishedDate": {Type: graphql.DateTime, Resolve: field(func(b *domain.Book) any { return b.PublishedDate })},
				"pageCount":     {Type: graphql.Int, Resolve: field(func(b *domain.Book) any { return b.PageCount })},
				"coverImageUrl": {Type: graphql.String, Resolve: field(func(b *domain.Book) any { return b.CoverImageURL })},
				"publisher":     {Type: graphql.String, Resolve: field(func(b *domain.Book) any { return b.Publisher })},
				"language":      {Type: graphql.NewNonNull(graphql.String), Resolve: field(func(b *domain.Book) any { return b.Language })},
				"authorId":      {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(b *domain.Book) any { return b.AuthorID })},
				"author":        {Type: authorType, Resolve: r.bookAuthor},
				"genres":        {Type: nonNullList(genreType), Resolve: r.bookGenres},
				"reviews":       {Type: nonNullList(reviewType), Resolve: r.bookReviews},
				"averageRating": {Type: graphql.Float, Resolve: r.bookAverageRating},
				"reviewCount":   {Type: graphql.NewNonNull(graphql.Int), Resolve: r.bookReviewCount},
			}
		}),
	})

	genreType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Genre",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(g *domain.Genre) any { return g.ID })},
				"name":        {Type: graphql.NewNonNull(graphql.String), Resolve: field(func(g *domain.Genre) any { return g.Name })},
				"description": {Type: graphql.String, Resolve: field(func(g *domain.Genre) any { return g.Description })},
				"books":       {Type: nonNullList(bookType), Resolve: r.genreBooks},
				"bookCount":   {Type: graphql.NewNonNull(graphql.Int), Resolve: r.genreBookCount},
			}
		}),
	})

	reviewType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":            {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(rv *domain.Review) any { return rv.ID })},
				"rating":        {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(rv *domain.Review) any { return rv.Rating })},
				"comment":       {Type: graphql.String, Resolve: field(func(rv *domain.Review) any { return rv.Comment })},
				"reviewerName":  {Type: graphql.NewNonNull(graphql.String), Resolve: field(func(rv *domain.Review) any { return rv.ReviewerName })},
				"reviewerEmail": {Type: graphql.String, Resolve: field(func(rv *domain.Review) any { return rv.ReviewerEmail })},
				"createdAt":     {Type: graphql.NewNonNull(graphql.DateTime), Resolve: field(func(rv *domain.Review) any { return rv.CreatedAt })},
				"updatedAt":     {Type: graphql.DateTime, Resolve: field(func(rv *domain.Review) any { return rv.UpdatedAt })},
				"bookId":        {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(rv *domain.Review) any { return rv.BookID })},
				"book":          {Type: bookType, Resolve: r.reviewBook},
			}
		}),
	})

	bookPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BookPage",
		Fields: graphql.Fields{
			"items":      {Type: nonNullList(bookType), Resolve: field(func(pg *pagination.Result[domain.Book]) any { return ptrs(pg.Items) })},
			"totalCount": {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(pg *pagination.Result[domain.Book]) any { return pg.TotalCount })},
			"page":       {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(pg *pagination.Result[domain.Book]) any { return pg.Page })},
			"perPage":    {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(pg *pagination.Result[domain.Book]) any { return pg.PerPage })},
			"totalPages": {Type: graphql.NewNonNull(graphql.Int), Resolve: field(func(pg *pagination.Result[domain.Book]) any { return pg.TotalPages })},
			"hasNext":    {Type: graphql.NewNonNull(graphql.Boolean), Resolve: field(func(pg *pagination.Result[domain.Book]) any { return pg.HasNext })},
		},
	})

	idArg := graphql.FieldConfigArgument{"id": {Type: graphql.NewNonNull(graphql.Int)}}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"books": {
				Type: graphql.NewNonNull(bookPageType),
				Args: graphql.FieldConfigArgument{
					"search":   {Type: graphql.String},
					"authorId": {Type: graphql.Int},
					"genreId":  {Type: graphql.Int},
					"page":     {Type: graphql.Int},
					"perPage":  {Type: graphql.Int},
				},
				Resolve: r.books,
			},
			"book":    {Type: bookType, Args: idArg, Resolve: r.book},
			"authors": {Type: nonNullList(authorType), Resolve: r.authors},
			"author":  {Type: authorType, Args: idArg, Resolve: r.author},
			"genres":  {Type: nonNullList(genreType), Resolve: r.genres},
			"genre":   {Type: genreType, Args: idArg, Resolve: r.genre},
			"reviews": {
				Type:    nonNullList(reviewType),
				Args:    graphql.FieldConfigArgument{"bookId": {Type: graphql.Int}},
				Resolve: r.reviews,
			},
			"review": {Type: reviewType, Args: idArg, Resolve: r.review},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addBook":      {Type: graphql.NewNonNull(bookType), Args: inputArg(addBookInput), Resolve: r.addBook},
			"updateBook":   {Type: graphql.NewNonNull(bookType), Args: inputArg(updateBookInput), Resolve: r.updateBook},
			"deleteBook":   {Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteBook},
			"addAuthor":    {Type: graphql.NewNonNull(authorType), Args: inputArg(addAuthorInput), Resolve: r.addAuthor},
			"updateAuthor": {Type: graphql.NewNonNull(authorType), Args: inputArg(updateAuthorInput), Resolve: r.updateAuthor},
			"deleteAuthor": {Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteAuthor},
			"addReview":    {Type: graphql.NewNonNull(reviewType), Args: inputArg(addReviewInput), Resolve: r.addReview},
			"updateReview": {Type: graphql.NewNonNull(reviewType), Args: inputArg(updateReviewInput), Resolve: r.updateReview},
			"deleteReview": {Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteReview},
			"addGenre":     {Type: graphql.NewNonNull(genreType), Args: inputArg(addGenreInput), Resolve: r.addGenre},
			"deleteGenre":  {Type: graphql.NewNonNull(graphql.Boolean), Args: idArg, Resolve: r.deleteGenre},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build graphql schema: %w", err)
	}
	return schema, nil
}

var (
	addAuthorInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AddAuthorInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        {Type: graphql.String},
			"biography":   {Type: graphql.String},
			"dateOfBirth": {Type: graphql.DateTime},
			"nationality": {Type: graphql.String},
			"imageUrl":    {Type: graphql.String},
		},
	})

	updateAuthorInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateAuthorInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":          {Type: graphql.NewNonNull(graphql.Int)},
			"name":        {Type: graphql.String},
			"biography":   {Type: graphql.String},
			"dateOfBirth": {Type: graphql.DateTime},
			"nationality": {Type: graphql.String},
			"imageUrl":    {Type: graphql.String},
		},
	})

	addBookInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AddBookInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":         {Type: graphql.String},
			"isbn":          {Type: graphql.String},
			"description":   {Type: graphql.String},
			"publishedDate": {Type: graphql.DateTime},
			"pageCount":     {Type: graphql.Int},
			"coverImageUrl": {Type: graphql.String},
			"publisher":     {Type: graphql.String},
			"language":      {Type: graphql.String},
			"authorId":      {Type: graphql.NewNonNull(graphql.Int)},
			"genreIds":      {Type: graphql.NewList(graphql.NewNonNull(graphql.Int))},
		},
	})

	updateBookInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateBookInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":            {Type: graphql.NewNonNull(graphql.Int)},
			"title":         {Type: graphql.String},
			"isbn":          {Type: graphql.String},
			"description":   {Type: graphql.String},
			"publishedDate": {Type: graphql.DateTime},
			"pageCount":     {Type: graphql.Int},
			"coverImageUrl": {Type: graphql.String},
			"publisher":     {Type: graphql.String},
			"language":      {Type: graphql.String},
			"authorId":      {Type: graphql.Int},
			"genreIds":      {Type: graphql.NewList(graphql.NewNonNull(graphql.Int))},
		},
	})

	addGenreInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AddGenreInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        {Type: graphql.String},
			"description": {Type: graphql.String},
		},
	})

	addReviewInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AddReviewInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"bookId":        {Type: graphql.NewNonNull(graphql.Int)},
			"rating":        {Type: graphql.NewNonNull(graphql.Int)},
			"comment":       {Type: graphql.String},
			"reviewerName":  {Type: graphql.String},
			"reviewerEmail": {Type: graphql.String},
		},
	})

	updateReviewInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateReviewInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":      {Type: graphql.NewNonNull(graphql.Int)},
			"rating":  {Type: graphql.Int},
			"comment": {Type: graphql.String},
		},
	})
)

func inputArg(t *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{"input": {Type: graphql.NewNonNull(t)}}
}

func nonNullList(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

// field adapts a getter on the source entity into a resolver.
func field[T any](get func(*T) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		src, ok := p.Source.(*T)
		if !ok {
			return nil, fmt.Errorf("unexpected source %T", p.Source)
		}
		return get(src), nil
	}
}
