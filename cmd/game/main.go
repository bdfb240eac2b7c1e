package main

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Cannonade/internal/game"
)

// config is filled from the environment; every field has a usable
// default so a bare `cannonade` just works.
type config struct {
	Width        int    `env:"CANNONADE_WIDTH" envDefault:"960"`
	Height       int    `env:"CANNONADE_HEIGHT" envDefault:"640"`
	SettingsPath string `env:"CANNONADE_SETTINGS" envDefault:"cannonade-settings.json"`
	RoadmapPath  string `env:"CANNONADE_ROADMAP"`
	LogLevel     string `env:"CANNONADE_LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Fatal().Err(err).Msg("parse environment")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("service", "cannonade").Logger()

	var rm *game.Roadmap
	if cfg.RoadmapPath != "" {
		rm, err = game.LoadRoadmapFile(cfg.RoadmapPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.RoadmapPath).Msg("roadmap file unusable, using default")
			rm = nil
		}
	}

	g := game.New(game.ShellConfig{
		Width:        cfg.Width,
		Height:       cfg.Height,
		SettingsPath: cfg.SettingsPath,
		Roadmap:      rm,
		Log:          logger,
	})
	defer g.Close()

	ebiten.SetWindowTitle("Cannonade")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal().Err(err).Msg("game loop exited")
	}
}
