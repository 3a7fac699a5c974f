package config

const (
	// DefaultDatabasePath is the default path for the application database.
	DefaultDatabasePath = "./aniping.db"

	// DefaultJikanBaseURL is the public Jikan v4 API endpoint.
	DefaultJikanBaseURL = "https://api.jikan.moe/v4"
)
