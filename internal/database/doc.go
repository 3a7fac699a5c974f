// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── anime/           # Local anime catalog (ingested Jikan metadata)
//	├── users/           # Account storage
//	└── watchlist/       # Per-user watch-list entries
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.New("./aniping.db")
//
//	animeRepo := anime.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//	watchRepo := watchlist.NewRepository(db.DB)
//
// # Error Conventions
//
// Business-rule violations are reported as package-level sentinel errors
// (ErrAlreadyExists, ErrNotFound, ErrEmailExists, ...) so callers can branch
// with errors.Is. Anything else is a storage failure wrapped with context.
package database
