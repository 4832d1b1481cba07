package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultAdminPassword is the well-known bootstrap credential. It is refused in production.
	DefaultAdminPassword = "admin123"
	defaultJWTSecret     = "supersecretjwtkey"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Storage  StorageConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Firebase FirebaseConfig
	Log      LogConfig
	Bcrypt   BcryptConfig
}

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BodyLimit string
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

type MongoConfig struct {
	URI      string
	Database string
}

type StorageConfig struct {
	Backend      string // local, s3 or gridfs
	UploadDir    string
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret    string
	TTL       time.Duration
	Blacklist string // memory or redis
}

// AdminConfig is the credential used to bootstrap the first administrator
type AdminConfig struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
}

// UsesDefaultPassword reports whether the bootstrap admin still has the well-known password
func (a AdminConfig) UsesDefaultPassword() bool {
	return a.Password == DefaultAdminPassword
}

type FirebaseConfig struct {
	CredentialsPath string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type BcryptConfig struct {
	Cost int
}

// IsProduction reports whether the service runs with production safeguards
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads configuration from .env, an optional config.yaml and TEAMFEED_* environment variables.
// Environment variables win over the file, the file wins over built-in defaults.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TEAMFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Env:       v.GetString("app.env"),
			Port:      v.GetString("app.port"),
			BodyLimit: v.GetString("app.body_limit"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("database.driver"),
			DSN:          v.GetString("database.dsn"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			LogLevel:     v.GetString("database.log_level"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
		},
		Storage: StorageConfig{
			Backend:      v.GetString("storage.backend"),
			UploadDir:    v.GetString("storage.upload_dir"),
			Bucket:       v.GetString("storage.bucket"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			TTL:       v.GetDuration("jwt.ttl"),
			Blacklist: v.GetString("jwt.blacklist"),
		},
		Admin: AdminConfig{
			Username:    v.GetString("admin.username"),
			Email:       v.GetString("admin.email"),
			DisplayName: v.GetString("admin.display_name"),
			Password:    v.GetString("admin.password"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: v.GetString("firebase.credentials_path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Bcrypt: BcryptConfig{
			Cost: v.GetInt("bcrypt.cost"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "team-feed")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.body_limit", "16M")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "teamfeed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("mongo.database", "teamfeed")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_path_style", true)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("jwt.blacklist", "memory")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@teamsns.com")
	v.SetDefault("admin.display_name", "Administrator")
	v.SetDefault("admin.password", DefaultAdminPassword)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("bcrypt.cost", 10)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	switch c.Storage.Backend {
	case "local", "s3":
	case "gridfs":
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for the gridfs storage backend")
		}
	default:
		return fmt.Errorf("storage.backend must be local, s3 or gridfs, got %q", c.Storage.Backend)
	}

	switch c.JWT.Blacklist {
	case "memory", "redis":
	default:
		return fmt.Errorf("jwt.blacklist must be memory or redis, got %q", c.JWT.Blacklist)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}

	if c.Admin.Username == "" || c.Admin.Email == "" || c.Admin.Password == "" {
		return fmt.Errorf("admin.username, admin.email and admin.password are required")
	}

	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be set to at least 32 characters in production")
		}
		if c.Admin.UsesDefaultPassword() {
			return fmt.Errorf("admin.password must not be the default bootstrap password in production")
		}
	}
	return nil
}
