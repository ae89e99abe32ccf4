package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	mcpserver "github.com/Quantumben/devdb-vscode/internal/mcp"
	"github.com/Quantumben/devdb-vscode/internal/provider"
	"github.com/Quantumben/devdb-vscode/internal/resolver"
	"github.com/Quantumben/devdb-vscode/internal/secret"
	"github.com/Quantumben/devdb-vscode/internal/service"
)

func main() {
	workspace := flag.String("workspace", "", "workspace root (defaults to the current directory)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	// stdout carries the MCP transport; everything else goes to stderr
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	root := *workspace
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("cannot determine workspace root")
		}
	}

	secrets := secret.EnvStore{}
	reporter := provider.NewLogReporter(log)

	// User-authored configuration wins over framework conventions.
	registry := provider.NewRegistry(log,
		provider.New(resolver.NewConfigResolver(root, secrets, log), reporter, log),
		provider.New(resolver.NewLaravelResolver(root, log), reporter, log),
	)

	inspector := service.NewInspector(registry, log)
	inspector.Start()
	defer inspector.Stop()

	watcher, err := resolver.NewConfigWatcher(root, log, func() {
		registry.Reset()
		inspector.DropCursors()
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watcher disabled")
	} else {
		defer watcher.Close()
	}

	log.Info().Str("workspace", root).Msg("devdb MCP server starting on stdio")
	if err := mcpserver.New(inspector, log).ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("mcp server error")
	}
}
