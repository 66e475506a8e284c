package config

import (
	"os"
	"strings"
)

// SkipMigrations disables AutoMigrate on startup, for deploys where the
// schema is managed out of band.
//
// Set via env:
// - SKIP_MIGRATIONS=true
func SkipMigrations() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
