package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Server struct {
	Host  string `toml:"host"`
	Port  int    `toml:"port"`
	Debug bool   `toml:"debug_mode"`
}

type Log struct {
	Level string `toml:"level"`
}

type File struct {
	Dir      string `toml:"dir"`
	Encoding string `toml:"encoding"`
}

type Sqlite struct {
	File string `toml:"sqlite_file"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type Storage struct {
	Driver string `toml:"driver"`
	File   File   `toml:"file"`
	Sqlite Sqlite `toml:"sqlite"`
	Redis  Redis  `toml:"redis"`
}

type Rating struct {
	// Backdated is "accept" (flag and recompute) or "reject".
	Backdated      string  `toml:"backdated"`
	DriftTolerance float64 `toml:"drift_tolerance"`
}

type Config struct {
	Server  Server  `toml:"server"`
	Log     Log     `toml:"log"`
	Storage Storage `toml:"storage"`
	Rating  Rating  `toml:"rating"`
}

const (
	DriverFile   = "file"
	DriverSqlite = "sqlite"
	DriverRedis  = "redis"

	BackdatedAccept = "accept"
	BackdatedReject = "reject"
)

func Default() Config {
	return Config{
		Server: Server{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Log: Log{Level: "info"},
		Storage: Storage{
			Driver: DriverFile,
			File: File{
				Dir:      "data",
				Encoding: "json",
			},
			Sqlite: Sqlite{File: "rating.sqlite"},
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "ratingengine",
			},
		},
		Rating: Rating{
			Backdated:      BackdatedAccept,
			DriftTolerance: 1e-9,
		},
	}
}

// New reads the TOML file at path on top of the defaults. An empty path means
// defaults only. Environment variables win over the file.
func New(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("RATING_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("RATING_REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("RATING_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RATING_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env RATING_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func (c Config) Validate() error {
	var err error
	switch c.Storage.Driver {
	case DriverFile, DriverSqlite, DriverRedis:
	default:
		err = errors.Join(err, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	switch c.Rating.Backdated {
	case BackdatedAccept, BackdatedReject:
	default:
		err = errors.Join(err, fmt.Errorf("rating.backdated must be %q or %q, got %q", BackdatedAccept, BackdatedReject, c.Rating.Backdated))
	}
	if c.Rating.DriftTolerance <= 0 {
		err = errors.Join(err, errors.New("rating.drift_tolerance must be positive"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		err = errors.Join(err, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	return err
}
