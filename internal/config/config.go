package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"prizewheel/internal/inventory"
	"prizewheel/internal/models"
)

const envPrefix = "PRIZEWHEEL_"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Wheel    WheelConfig    `yaml:"wheel"`
	Storage  StorageConfig  `yaml:"storage"`
	Admin    AdminConfig    `yaml:"admin"`
	Defaults []models.Prize `yaml:"defaults"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Verbose bool   `yaml:"verbose"`
}

type WheelConfig struct {
	SpinDuration time.Duration `yaml:"spin_duration"`
}

type StorageConfig struct {
	Driver string      `yaml:"driver"` // file, redis or memory
	Path   string      `yaml:"path"`
	Key    string      `yaml:"key"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addrs        []string      `yaml:"addrs"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type AdminConfig struct {
	Passphrase string        `yaml:"passphrase"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	CookieName string        `yaml:"cookie_name"`
	MinPrizes  int           `yaml:"min_prizes"`
	MaxPrizes  int           `yaml:"max_prizes"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Wheel: WheelConfig{
			SpinDuration: 5 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "data/prizes.json",
			Key:    "vhu_spin_prizes",
			Redis: RedisConfig{
				ReadTimeout:  time.Second,
				WriteTimeout: time.Second,
			},
		},
		Admin: AdminConfig{
			Passphrase: "vhu2026",
			SessionTTL: time.Hour,
			CookieName: "vhu_admin_session",
			MinPrizes:  4,
			MaxPrizes:  12,
		},
	}
}

// Load reads .env (if any), then the YAML file at path (if any), then applies
// PRIZEWHEEL_* environment overrides on top of the defaults.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sVERBOSE: %w", envPrefix, err)
		}
		c.Server.Verbose = b
	}
	if v, ok := lookup("SPIN_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSPIN_DURATION: %w", envPrefix, err)
		}
		c.Wheel.SpinDuration = d
	}
	if v, ok := lookup("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := lookup("STORAGE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := lookup("STORAGE_KEY"); ok {
		c.Storage.Key = v
	}
	if v, ok := lookup("REDIS_ADDRS"); ok {
		c.Storage.Redis.Addrs = strings.Split(v, ",")
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := lookup("ADMIN_PASSPHRASE"); ok {
		c.Admin.Passphrase = v
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file driver")
		}
	case "redis":
		if len(c.Storage.Redis.Addrs) == 0 {
			return errors.New("storage.redis.addrs is required for the redis driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Wheel.SpinDuration <= 0 {
		return errors.New("wheel.spin_duration must be positive")
	}
	if c.Admin.Passphrase == "" {
		return errors.New("admin.passphrase is required")
	}
	if c.Admin.MaxPrizes > 0 && c.Admin.MinPrizes > c.Admin.MaxPrizes {
		return errors.New("admin.min_prizes exceeds admin.max_prizes")
	}
	if len(c.Defaults) > 0 {
		if err := inventory.Validate(c.Defaults); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
