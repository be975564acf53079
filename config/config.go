package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"classBook/logger"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"

	BlobGCS   = "gcs"
	BlobLocal = "local"
)

type Config struct {
	LogLevel logger.LogLevel `env:"LOG_LEVEL" envDefault:"INFO"`
	LogDir   string          `env:"LOG_DIR" envDefault:"./logs"`
	Store    StoreConfig     `envPrefix:"STORE_"`
	Firebase FirebaseConfig  `envPrefix:"FIREBASE_"`
	Mongo    MongoConfig     `envPrefix:"MONGO_"`
	Database DatabaseConfig  `envPrefix:"DATABASE_"`
	Redis    RedisConfig     `envPrefix:"REDIS_"`
	Blob     BlobConfig      `envPrefix:"BLOB_"`
	MaxAPI   MaxConfig       `envPrefix:"MAX_"`
	CacheTTL time.Duration   `env:"CACHE_TTL" envDefault:"60s"`
}

type StoreConfig struct {
	Driver  string        `env:"DRIVER" envDefault:"firestore"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type FirebaseConfig struct {
	CredentialsFile string `env:"CREDENTIALS_FILE"`
	ProjectID       string `env:"PROJECT_ID"`
	Bucket          string `env:"BUCKET"`
}

// BucketName falls back to the default Firebase bucket of the project.
func (c FirebaseConfig) BucketName() string {
	if c.Bucket != "" {
		return c.Bucket
	}
	if c.ProjectID == "" {
		return ""
	}
	return c.ProjectID + ".appspot.com"
}

type MongoConfig struct {
	URI      string `env:"URI"`
	Database string `env:"DATABASE" envDefault:"classbook"`
}

type DatabaseConfig struct {
	URI string `env:"URI"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type BlobConfig struct {
	Driver  string `env:"DRIVER" envDefault:"gcs"`
	Dir     string `env:"DIR" envDefault:"./uploads"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080/files"`
	// MaxBytes caps a single upload.
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"20971520"`
}

type MaxConfig struct {
	Token string `env:"TOKEN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected drivers have what they need to connect.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreFirestore:
		if c.Firebase.ProjectID == "" && c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("config: firestore store needs FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_FILE")
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("config: mongo store needs MONGO_URI")
		}
	case StorePostgres:
		if c.Database.URI == "" {
			return fmt.Errorf("config: postgres store needs DATABASE_URI")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Blob.Driver {
	case BlobGCS:
		if c.Firebase.BucketName() == "" {
			return fmt.Errorf("config: gcs blob store needs FIREBASE_BUCKET or FIREBASE_PROJECT_ID")
		}
	case BlobLocal:
		if c.Blob.Dir == "" {
			return fmt.Errorf("config: local blob store needs BLOB_DIR")
		}
	default:
		return fmt.Errorf("config: unknown BLOB_DRIVER %q", c.Blob.Driver)
	}

	if c.Blob.MaxBytes <= 0 {
		return fmt.Errorf("config: BLOB_MAX_BYTES must be positive")
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("config: CACHE_TTL must not be negative")
	}

	return nil
}
