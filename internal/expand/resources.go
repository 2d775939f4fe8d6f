package expand

const (
	Users     = "users"
	Books     = "books"
	Reviews   = "reviews"
	Favorites = "favorites"
)

// Default holds the whitelists of the API resources.
func Default() *Registry {
	return NewRegistry().
		Permit(Users,
			Relation{Name: "books", Field: "Books", Target: Books},
			Relation{Name: "reviews", Field: "Reviews", Target: Reviews},
			Relation{Name: "favorites", Field: "Favorites", Target: Favorites, RootOnly: true},
		).
		Permit(Books,
			Relation{Name: "author", Field: "Author", Target: Users},
			Relation{Name: "reviews", Field: "Reviews", Target: Reviews},
		).
		Permit(Reviews,
			Relation{Name: "book", Field: "Book", Target: Books},
			Relation{Name: "reviewer", Field: "Reviewer", Target: Users},
		).
		Permit(Favorites,
			Relation{Name: "book", Field: "Book", Target: Books},
			Relation{Name: "user", Field: "User", Target: Users},
		)
}
