package config

import "os"

// Config holds client configuration, read from the environment. A .env file
// in the working directory is loaded first by main.
type Config struct {
	APIURL    string // base URL of the backend API
	APIToken  string // optional bearer token
	CachePath string // local cache database path
	LogPath   string // optional log file path
}

// Load reads the configuration from environment variables with defaults.
func Load() Config {
	return Config{
		APIURL:    getEnv("NAKUPI_API_URL", "http://localhost:8000/api"),
		APIToken:  os.Getenv("NAKUPI_API_TOKEN"),
		CachePath: getEnv("NAKUPI_CACHE", "nakupi.sqlite3"),
		LogPath:   os.Getenv("NAKUPI_LOG"),
	}
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
