package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Storage drivers
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// DefaultPath is read when CONFIG_PATH is unset
const DefaultPath = "configs/config.yaml"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string        `yaml:"port" env:"SERVER_PORT"`
		Mode           string        `yaml:"mode" env:"SERVER_MODE"`
		BaseURL        string        `yaml:"base_url" env:"SERVER_BASE_URL"`
		RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT"`
		// AllowedOrigins is a comma separated list of extra websocket origins
		AllowedOrigins string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver          string        `yaml:"driver" env:"DB_DRIVER"`
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                string        `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration time.Duration `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string        `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver        string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath     string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		MaxUploadSize int64  `yaml:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE"`
		Minio         struct {
			Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
			AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
			SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
			Bucket    string `yaml:"bucket" env:"MINIO_BUCKET"`
			UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
			PublicURL string `yaml:"public_url" env:"MINIO_PUBLIC_URL"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	Redis struct {
		URL            string        `yaml:"url" env:"REDIS_URL"`
		IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"REDIS_IDEMPOTENCY_TTL"`
	} `yaml:"redis"`

	Admin struct {
		BootstrapToken string `yaml:"bootstrap_token" env:"ADMIN_BOOTSTRAP_TOKEN"`
		SeedEmail      string `yaml:"seed_email" env:"ADMIN_SEED_EMAIL"`
		SeedPassword   string `yaml:"seed_password" env:"ADMIN_SEED_PASSWORD"`
		SeedName       string `yaml:"seed_name" env:"ADMIN_SEED_NAME"`
	} `yaml:"admin"`
}

// Path returns the config file location, honouring CONFIG_PATH
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	file, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.RequestTimeout = 15 * time.Second

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusfound"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = time.Hour
	config.Database.AutoMigrate = true

	config.JWT.AccessTokenExpiration = time.Hour
	config.JWT.Issuer = "campusfound"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = StorageLocal
	config.Storage.LocalPath = "./uploads"
	config.Storage.MaxUploadSize = 5 << 20
	config.Storage.Minio.Bucket = "campusfound"

	config.Redis.IdempotencyTTL = 24 * time.Hour

	config.Admin.SeedName = "Lost & Found Office"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.JWT.AccessTokenExpiration <= 0 {
		return fmt.Errorf("JWT access token expiration must be positive")
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if _, err := url.ParseRequestURI(config.Server.BaseURL); err != nil {
		return fmt.Errorf("invalid server base url: %w", err)
	}

	switch config.Storage.Driver {
	case StorageLocal:
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local_path is required")
		}
	case StorageMinio:
		if config.Storage.Minio.Endpoint == "" || config.Storage.Minio.Bucket == "" {
			return fmt.Errorf("minio endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
	if config.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage max_upload_size must be positive")
	}

	if (config.Admin.SeedEmail == "") != (config.Admin.SeedPassword == "") {
		return fmt.Errorf("admin seed_email and seed_password must be set together")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     c.Database.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// UploadsURL is the public prefix of files kept by the local storage driver
func (c *Config) UploadsURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/uploads"
}

// IsProduction reports whether gin should run in release mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production" || c.Server.Mode == "release"
}

// WebsocketOrigins returns the configured extra websocket origins
func (c *Config) WebsocketOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
