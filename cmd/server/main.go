package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wildstep/internal/admin"
	"wildstep/internal/audio"
	"wildstep/internal/config"
	"wildstep/internal/event"
	"wildstep/internal/game"
	"wildstep/internal/logger"
	"wildstep/internal/maps"
	"wildstep/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, logger.DefaultServiceName, cfg.Version, cfg.Environment, false))

	if err := ensureHostKey(cfg.HostKeyPath, log); err != nil {
		return fmt.Errorf("host key: %w", err)
	}

	world, err := loadWorld(cfg, log)
	if err != nil {
		return err
	}

	bus := event.NewMemoryBus()
	subscribeLogging(bus, log)

	sounds := audio.NewPlayer(0.4, log)
	sounds.SetEnabled(cfg.AudioEnabled)
	if cfg.AudioEnabled {
		if err := sounds.StartSpeaker(); err != nil {
			log.Warn("audio output unavailable, continuing muted", "error", err)
			sounds.SetEnabled(false)
		}
	}
	defer sounds.Close()

	gameLoop := game.NewGameLoop(world, game.Options{
		Bus:            bus,
		Sound:          sounds,
		Logger:         log,
		FlashTicks:     game.DurationToTicks(cfg.FlashDuration),
		RateMultiplier: cfg.EncounterRate,
		SavedTTL:       cfg.SavedPlayerTTL,
		DayLength:      cfg.DayLength,
	})
	go gameLoop.Run()
	defer gameLoop.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	var adminServer *admin.Server
	if cfg.AdminAddr != "" {
		adminServer = admin.NewServer(cfg.AdminAddr, cfg.Version, gameLoop, log)
		go func() { errCh <- adminServer.Start() }()
	}

	sshServer := server.NewSSHServer(cfg.ListenAddr(), cfg.HostKeyPath, gameLoop, log)
	go func() { errCh <- sshServer.Start() }()
	log.Info("wildstep started", "connect", fmt.Sprintf("ssh -p %d YourName@localhost", cfg.Port))

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var errs []error
	errs = append(errs, err, sshServer.Shutdown(shutdownCtx))
	if adminServer != nil {
		errs = append(errs, adminServer.Shutdown(shutdownCtx))
	}
	return errors.Join(errs...)
}

// loadWorld reads maps, zones and the bestiary. Missing zone or bestiary
// files leave the world without encounters; broken ones are fatal.
func loadWorld(cfg *config.Config, log *slog.Logger) (*game.World, error) {
	allMaps, err := maps.LoadMaps(cfg.MapsDir)
	if err != nil || len(allMaps) == 0 {
		log.Warn("no maps loaded, using the fallback map", "dir", cfg.MapsDir, "error", err)
		allMaps = map[string]*maps.Map{cfg.DefaultMap: maps.FallbackMap(cfg.DefaultMap)}
	}
	for name, m := range allMaps {
		log.Info("map loaded", "map", name, "width", m.Width, "height", m.Height, "portals", len(m.Portals))
	}

	zones, err := maps.LoadZones(cfg.ZonesFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("zones file missing, encounters disabled", "path", cfg.ZonesFile)
	case err != nil:
		return nil, fmt.Errorf("load zones: %w", err)
	default:
		log.Info("zones loaded", "count", len(zones))
	}

	bestiary, err := game.LoadBestiary(cfg.Bestiary)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("bestiary missing, every encounter will fail to start", "path", cfg.Bestiary)
	case err != nil:
		return nil, fmt.Errorf("load bestiary: %w", err)
	default:
		if err := bestiary.CheckZones(zones); err != nil {
			log.Warn("zones reference unknown enemies", "error", err)
		}
	}

	world, err := game.NewWorld(allMaps, zones, bestiary, cfg.DefaultMap)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	return world, nil
}

// subscribeLogging mirrors encounter and ambient events into the log.
func subscribeLogging(bus event.Bus, log *slog.Logger) {
	handler := func(_ context.Context, e event.Event) error {
		log.Debug("event", "type", e.Type, "source", e.Source, "payload", e.Payload)
		return nil
	}
	for _, t := range []event.Type{
		event.StepCountChanged,
		event.BattleStarting,
		event.EncounterAborted,
		event.BattleEnded,
		event.ZoneEntered,
		event.ZoneLeft,
		event.WeatherChanged,
		event.DayPhaseChanged,
	} {
		bus.Subscribe(t, handler)
	}
}

func ensureHostKey(path string, log *slog.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	log.Info("generating new host key", "path", path)
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
}
