package permission

// Policies attached to the API resources.
var (
	BookPolicy     = Or(ReadOnly, IsAuthor, IsAdmin)
	ReviewPolicy   = Or(ReadOnly, IsReviewer, IsAdmin)
	FavoritePolicy = IsOwner
	UserPolicy     = Or(IsOwner, IsAdmin)
	RegisterPolicy = AllowAny
)
