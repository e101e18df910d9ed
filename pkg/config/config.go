package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string
	Env        string
	Database   DatabaseConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Firebase   FirebaseConfig
	Storage    StorageConfig
	Pagination PaginationConfig
	Log        LogConfig
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres, sqlite
	PostgresURL     string `mapstructure:"postgres_url"`
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type FirebaseConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
}

type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // s3, local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key_id"`
	SecretKey string `mapstructure:"secret_access_key"`
	PathStyle bool   `mapstructure:"use_path_style"`
	PublicURL string `mapstructure:"public_url"`
	BasePath  string `mapstructure:"base_path"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads .env, an optional config.yaml and the environment, in that order of precedence
// (environment wins).
func Load() (*Config, error) {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.postgres_url", "host=localhost port=5432 user=postgres password=postgres dbname=spire sslmode=disable")
	v.SetDefault("database.file_path", "./data/spire.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "spire")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "supersecretjwtkey")
	v.SetDefault("jwt.ttl", "72h")
	v.SetDefault("firebase.credentials_path", "")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.base_path", "./data/uploads")
	v.SetDefault("pagination.default_limit", 20)
	v.SetDefault("pagination.max_limit", 100)
	v.SetDefault("log.level", "info")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("port", "PORT")
	v.BindEnv("env", "ENV")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.postgres_url", "POSTGRES_CONN_STR")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.ttl", "JWT_TTL")
	v.BindEnv("firebase.credentials_path", "FIREBASE_CREDENTIALS_PATH")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.bucket", "S3_BUCKET")
	v.BindEnv("storage.region", "S3_REGION")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.use_path_style", "S3_USE_PATH_STYLE")
	v.BindEnv("storage.public_url", "S3_PUBLIC_URL")
	v.BindEnv("storage.base_path", "STORAGE_BASE_PATH")
	v.BindEnv("pagination.default_limit", "PAGINATION_DEFAULT_LIMIT")
	v.BindEnv("pagination.max_limit", "PAGINATION_MAX_LIMIT")
	v.BindEnv("log.level", "LOG_LEVEL")
}
