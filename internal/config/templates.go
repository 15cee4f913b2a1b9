package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Journal Configuration

# Environment: "development" or "production"
env = "development"

[server]
# Listen host; empty binds every interface
host = ""
# Listen port (overridden by PORT)
port = 3001
# Gin mode: debug, release, test
mode = "release"
# Allowed CORS origins
cors_origins = ["*"]

[database]
# Storage driver: "sqlite" or "postgres" (overridden by DB_DRIVER)
driver = "sqlite"
# SQLite database file (overridden by SQLITE_PATH)
# sqlite_path = "~/.config/trading-journal/trades.db"
# Postgres connection string (overridden by DATABASE_URL)
postgres_dsn = ""
# Connection attempts before giving up on Postgres
connect_attempts = 5

[logging]
# Log level: debug, info, warn, error (overridden by LOG_LEVEL)
level = "info"
# Write human-readable logs to stderr
console = true
# Write JSON logs to a rotating file
file = true
# Rotate after this many megabytes
max_size = 50
# Rotated files to keep
max_backups = 5
# Days to keep rotated files
max_age = 30

[ui]
# Enable colored output
color_enabled = true
# Date format for tables
date_format = "02-Jan-2006 15:04"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
