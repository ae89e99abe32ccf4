package resolver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/domain"
)

// LaravelResolver discovers a connection from a Laravel project's own
// configuration: the standard .env mechanism, falling back to the framework's
// default SQLite file. Zero-config: no tool-specific artifact is read.
type LaravelResolver struct {
	root string
	log  zerolog.Logger
}

func NewLaravelResolver(root string, log zerolog.Logger) *LaravelResolver {
	return &LaravelResolver{root: root, log: log}
}

func (r *LaravelResolver) Name() string { return "laravel" }

// Resolve yields at most one descriptor implied by the project convention.
func (r *LaravelResolver) Resolve(ctx context.Context) []domain.ConnectionDescriptor {
	env, err := godotenv.Read(filepath.Join(r.root, ".env"))
	if err != nil {
		env = map[string]string{}
	}

	switch env["DB_CONNECTION"] {
	case "sqlite", "":
		d, ok := r.sqliteDescriptor(env)
		if !ok {
			return nil
		}
		return []domain.ConnectionDescriptor{d}
	case "mysql":
		return r.serverDescriptor(env, domain.DriverMySQL)
	case "mariadb":
		return r.serverDescriptor(env, domain.DriverMariaDB)
	case "pgsql", "postgres":
		return r.serverDescriptor(env, domain.DriverPostgres)
	}
	return nil
}

// sqliteDescriptor resolves the database file path: DB_DATABASE when set
// (relative paths are workspace-relative), else the framework default.
// The convention only matches when the file actually exists.
func (r *LaravelResolver) sqliteDescriptor(env map[string]string) (domain.ConnectionDescriptor, bool) {
	path := env["DB_DATABASE"]
	switch {
	case path == "":
		path = filepath.Join(r.root, "database", "database.sqlite")
	case !filepath.IsAbs(path):
		path = filepath.Join(r.root, path)
	}
	if _, err := os.Stat(path); err != nil {
		return domain.ConnectionDescriptor{}, false
	}
	return domain.ConnectionDescriptor{Type: domain.DriverSQLite, Path: path}, true
}

func (r *LaravelResolver) serverDescriptor(env map[string]string, driver domain.Driver) []domain.ConnectionDescriptor {
	database := env["DB_DATABASE"]
	if database == "" {
		r.log.Debug().Str("driver", string(driver)).Msg("DB_CONNECTION set but DB_DATABASE missing")
		return nil
	}
	host := env["DB_HOST"]
	if host == "" {
		host = "127.0.0.1"
	}
	return []domain.ConnectionDescriptor{{
		Type:     driver,
		Name:     database,
		Host:     host,
		Port:     domain.Port(env["DB_PORT"]),
		Username: env["DB_USERNAME"],
		Password: env["DB_PASSWORD"],
		Database: database,
	}}
}
