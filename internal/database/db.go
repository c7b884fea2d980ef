package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mvaldesd/relato/internal/models"
)

// Config contains database connection options.
type Config struct {
	Driver string // "sqlite" (default) or "postgres"
	Path   string // SQLite database path when Driver == sqlite
	DSN    string // Optional DSN override

	// Host based parameters used when Driver == postgres and no DSN is set.
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "sqlite"
	}

	switch driver {
	case "sqlite":
		return openSQLite(cfg)
	case "postgres":
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrate applies the schema for every persistent model.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("nil database handle")
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
	)
}
