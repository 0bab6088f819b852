package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"newsroom-cms/images"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "CMS_CONFIG"
	portEnv           = "PORT"
	databaseDriverEnv = "DB_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	jwtSecretEnv      = "JWT_SECRET"
	storageBackendEnv = "STORAGE_BACKEND"
	storageRootEnv    = "STORAGE_ROOT"
	webHDFSURLEnv     = "WEBHDFS_URL"
	webHDFSUserEnv    = "WEBHDFS_USER"
	logLevelEnv       = "LOG_LEVEL"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Storage     StorageConfig     `yaml:"storage"`
	Images      ImagesConfig      `yaml:"images"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Worker      WorkerConfig      `yaml:"worker"`
	Consistency ConsistencyConfig `yaml:"consistency"`
	LogLevel    string            `yaml:"logLevel"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DatabaseConfig selects the document store. Driver is postgres or sqlite.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// StorageConfig places article content and derived images. Backend is
// local or webhdfs.
type StorageConfig struct {
	Backend    string        `yaml:"backend"`
	Root       string        `yaml:"root"`
	ContentDir string        `yaml:"contentDir"`
	ImageDir   string        `yaml:"imageDir"`
	WebHDFS    WebHDFSConfig `yaml:"webhdfs"`
}

type WebHDFSConfig struct {
	URL     string        `yaml:"url"`
	User    string        `yaml:"user"`
	Timeout time.Duration `yaml:"timeout"`
}

// ImagesConfig names the resolutions every article image is derived into.
type ImagesConfig struct {
	Resolutions map[string]images.Resolution `yaml:"resolutions"`
	Profile     images.Resolution            `yaml:"profile"`
}

type PipelineConfig struct {
	SideEffectTimeout time.Duration `yaml:"sideEffectTimeout"`
}

type WorkerConfig struct {
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queueSize"`
	MaxAttempts int           `yaml:"maxAttempts"`
	Backoff     time.Duration `yaml:"backoff"`
	TaskTimeout time.Duration `yaml:"taskTimeout"`
}

// ConsistencyConfig schedules the tag back-reference repair job. A zero
// interval disables it.
type ConsistencyConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = Default()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv(storageBackendEnv); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(storageRootEnv); v != "" {
		c.Storage.Root = v
	}
	if v := os.Getenv(webHDFSURLEnv); v != "" {
		c.Storage.WebHDFS.URL = v
	}
	if v := os.Getenv(webHDFSUserEnv); v != "" {
		c.Storage.WebHDFS.User = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Worker.Workers = n
		}
	}
}

func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", ShutdownTimeout: 10 * time.Second},
		Database: DatabaseConfig{Driver: "postgres", DSN: "host=localhost port=5432 user=cms password=cms dbname=cms sslmode=disable"},
		JWT: JWTConfig{
			Secret:     "your-secret-key-change-this-in-production",
			Issuer:     "newsroom-cms",
			Expiration: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Backend:    "local",
			Root:       "uploads",
			ContentDir: "articles",
			ImageDir:   "hdfs-images",
			WebHDFS:    WebHDFSConfig{Timeout: 10 * time.Second},
		},
		Images: ImagesConfig{
			Resolutions: map[string]images.Resolution{
				"thumbnail":        {Height: 200, Width: 300},
				"featureThumbnail": {Height: 400, Width: 600},
				"image":            {Height: 720, Width: 1280},
			},
			Profile: images.Resolution{Height: 200, Width: 200},
		},
		Pipeline:    PipelineConfig{SideEffectTimeout: 15 * time.Second},
		Worker:      WorkerConfig{Workers: 4, QueueSize: 256, MaxAttempts: 3, Backoff: 500 * time.Millisecond, TaskTimeout: 30 * time.Second},
		Consistency: ConsistencyConfig{Interval: time.Hour},
		LogLevel:    "info",
	}
}
