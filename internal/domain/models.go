package domain

// Models lists every persisted type, in dependency order.
func Models() []any {
	return []any{
		&User{},
		&Book{},
		&Review{},
		&Favorite{},
		&RefreshToken{},
	}
}
