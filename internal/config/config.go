package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the server configuration.
type Config struct {
	Port        int    `validate:"min=1,max=65535"`
	HostKeyPath string `validate:"required"`
	MapsDir     string `validate:"required"`
	ZonesFile   string `validate:"required"`
	Bestiary    string `validate:"required"`
	DefaultMap  string `validate:"required"`
	AdminAddr   string // empty disables the admin HTTP server

	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=json text"`
	Environment string `validate:"required"`
	Version     string

	FlashDuration  time.Duration `validate:"min=100ms,max=10s"`
	EncounterRate  float64       `validate:"gte=0.1,lte=5"`
	AudioEnabled   bool
	SavedPlayerTTL time.Duration `validate:"min=1m"`
	DayLength      time.Duration `validate:"min=10s"`
}

// Load loads the configuration from the environment, reading .env first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars win anyway.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HostKeyPath: getEnv("HOST_KEY_PATH", DefaultHostKeyPath),
		MapsDir:     getEnv("MAPS_DIR", DefaultMapsDir),
		ZonesFile:   getEnv("ZONES_FILE", DefaultZonesFile),
		Bestiary:    getEnv("BESTIARY_FILE", DefaultBestiaryFile),
		DefaultMap:  getEnv("DEFAULT_MAP", DefaultMapName),
		AdminAddr:   getEnv("ADMIN_ADDR", DefaultAdminAddr),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		Version:     getEnv("VERSION", "dev"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", DefaultPort)); err != nil {
		return nil, fmt.Errorf("%w: PORT: %w", ErrInvalid, err)
	}
	if cfg.FlashDuration, err = time.ParseDuration(getEnv("FLASH_DURATION", DefaultFlashDuration)); err != nil {
		return nil, fmt.Errorf("%w: FLASH_DURATION: %w", ErrInvalid, err)
	}
	if cfg.EncounterRate, err = strconv.ParseFloat(getEnv("ENCOUNTER_RATE", "1.0"), 64); err != nil {
		return nil, fmt.Errorf("%w: ENCOUNTER_RATE: %w", ErrInvalid, err)
	}
	if cfg.AudioEnabled, err = strconv.ParseBool(getEnv("AUDIO_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("%w: AUDIO_ENABLED: %w", ErrInvalid, err)
	}
	if cfg.SavedPlayerTTL, err = time.ParseDuration(getEnv("SAVED_PLAYER_TTL", DefaultSavedPlayerTTL)); err != nil {
		return nil, fmt.Errorf("%w: SAVED_PLAYER_TTL: %w", ErrInvalid, err)
	}
	if cfg.DayLength, err = time.ParseDuration(getEnv("DAY_LENGTH", DefaultDayLength)); err != nil {
		return nil, fmt.Errorf("%w: DAY_LENGTH: %w", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ListenAddr returns the SSH listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
