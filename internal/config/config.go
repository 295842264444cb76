package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port            string
	StorageDriver   string
	MongoURI        string
	DBUser          string
	DBPassword      string
	DBCluster       string
	DBName          string
	DBHost          string
	DBPort          string
	DBSSLMode       string
	SQLitePath      string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	UploadDir       string
}

// LoadEnv loads variables from a .env file when one exists. Values already
// present in the process environment win.
func LoadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("service=config msg=%q err=%v", "env_file_unreadable", err)
	}
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	LoadEnv()

	cfg := Config{
		Port:           getenvDefault("PORT", "5000"),
		StorageDriver:  strings.ToLower(getenvDefault("STORAGE_DRIVER", DriverMongo)),
		MongoURI:       os.Getenv("MONGO_URI"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASS"),
		DBCluster:      getenvDefault("DB_CLUSTER", "cluster0.w9ewo.mongodb.net"),
		DBName:         getenvDefault("DB_NAME", "yooda_hostel"),
		DBHost:         getenvDefault("DB_HOST", "localhost"),
		DBPort:         getenvDefault("DB_PORT", "5432"),
		DBSSLMode:      getenvDefault("DB_SSLMODE", "disable"),
		SQLitePath:     getenvDefault("SQLITE_PATH", "hostel.db"),
		AllowedOrigins: splitList(getenvDefault("CORS_ORIGINS", "*")),
		UploadDir:      getenvDefault("UPLOAD_DIR", "uploads"),
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing settings for the selected storage driver.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" && (c.DBUser == "" || c.DBPassword == "") {
			return errors.New("config: MONGO_URI or DB_USER and DB_PASS must be set")
		}
	case DriverPostgres:
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("config: DB_USER and DB_NAME must be set for postgres")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH must be set for sqlite")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// MongoConnectionURI returns MONGO_URI, or the Atlas SRV URI built from the
// credentials and cluster host.
func (c Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBCluster,
		Path:     "/" + c.DBName,
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=" + c.DBSSLMode
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
