package app

import "github.com/mvaldesd/relato/internal/database"

// DatabaseSettings converts DatabaseConfig to the database package representation.
func (c DatabaseConfig) DatabaseSettings() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Postgres.Host,
		Port:     c.Postgres.Port,
		User:     c.Postgres.Username,
		Password: c.Postgres.Password,
		Name:     c.Postgres.Database,
	}
}
