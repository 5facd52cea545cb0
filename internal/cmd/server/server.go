// Package server parses contest server flags and launches the service.
package server

import (
	"context"
	"flag"

	entrypoint "github.com/nextchamp/nextchamp/internal/platform/cmd"
	"github.com/nextchamp/nextchamp/internal/services/contest/app"
)

// Config holds contest server command configuration.
type Config struct {
	Port int `env:"NEXTCHAMP_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The contest HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the contest HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(context.Context) error {
		return app.Run(ctx, cfg.Port)
	})
}
