package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Chain     ChainConfig     `mapstructure:"chain"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OTel      OTelConfig      `mapstructure:"otel"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects the persistence backend and its table names
type StoreConfig struct {
	Driver            string `mapstructure:"driver"`
	EventsTable       string `mapstructure:"events_table"`
	ApplicationsTable string `mapstructure:"applications_table"`
	MessagesTable     string `mapstructure:"messages_table"`
	MatchesTable      string `mapstructure:"matches_table"`
}

// AWSConfig holds DynamoDB connection settings
type AWSConfig struct {
	Region           string `mapstructure:"region"`
	DynamoDBEndpoint string `mapstructure:"dynamodb_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

// ChainConfig holds EVM RPC and contract settings
type ChainConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	ChainID             int64         `mapstructure:"chain_id"`
	NFTContractAddress  string        `mapstructure:"nft_contract_address"`
	StampManagerAddress string        `mapstructure:"stamp_manager_address"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	CacheMaxStaleness   time.Duration `mapstructure:"cache_max_staleness"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	MaxTokenScan        int64         `mapstructure:"max_token_scan"`
}

// Enabled reports whether an RPC endpoint is configured
func (c *ChainConfig) Enabled() bool {
	return c.RPCURL != ""
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// RateLimitConfig holds per-IP limits for write-heavy public endpoints
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine, env vars may be set directly
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindAliases(v)
	setDefaults(v)
	applyFileAliases(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envAliases maps a config key to the name the web app's .env uses for it
var envAliases = []struct{ key, alias string }{
	{"APP_ENVIRONMENT", "NODE_ENV"},
	{"AWS_DYNAMODB_ENDPOINT", "DYNAMODB_ENDPOINT"},
	{"CHAIN_ID", "VITE_CHAIN_ID"},
	{"CHAIN_NFT_CONTRACT_ADDRESS", "VITE_NFT_CONTRACT_ADDRESS"},
	{"CHAIN_STAMP_MANAGER_ADDRESS", "VITE_STAMP_MANAGER_ADDRESS"},
}

// bindAliases lets the variables shared with the web app configure the
// backend without renaming. The primary name wins when both are set.
func bindAliases(v *viper.Viper) {
	for _, a := range envAliases {
		_ = v.BindEnv(a.key, a.key, a.alias)
	}
}

// applyFileAliases does the same for keys read from the .env file. The alias
// value becomes the default, so environment variables and the primary name
// in the file still take precedence.
func applyFileAliases(v *viper.Viper) {
	for _, a := range envAliases {
		if v.InConfig(a.alias) && !v.InConfig(a.key) {
			v.SetDefault(a.key, v.Get(a.alias))
		}
	}
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "career-passport")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 3001)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("SERVER_ALLOW_ORIGINS", "*")

	// Store defaults
	v.SetDefault("STORE_DRIVER", StoreDriverDynamoDB)
	v.SetDefault("STORE_EVENTS_TABLE", "Events")
	v.SetDefault("STORE_APPLICATIONS_TABLE", "EventApplications")
	v.SetDefault("STORE_MESSAGES_TABLE", "Messages")
	v.SetDefault("STORE_MATCHES_TABLE", "Matches")

	// AWS defaults
	v.SetDefault("AWS_REGION", "ap-northeast-1")
	v.SetDefault("AWS_DYNAMODB_ENDPOINT", "")

	// Database defaults
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_DBNAME", "career_passport")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_CONNS", 25)
	v.SetDefault("DATABASE_MIN_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// Redis defaults
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka defaults
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "career-passport.events")
	v.SetDefault("KAFKA_CLIENT_ID", "career-passport")

	// Chain defaults
	v.SetDefault("CHAIN_RPC_URL", "")
	v.SetDefault("CHAIN_ID", 0)
	v.SetDefault("CHAIN_NFT_CONTRACT_ADDRESS", "")
	v.SetDefault("CHAIN_STAMP_MANAGER_ADDRESS", "")
	v.SetDefault("CHAIN_RETRY_DELAY", "1s")
	v.SetDefault("CHAIN_CACHE_TTL", "168h") // 7 days
	v.SetDefault("CHAIN_CACHE_MAX_STALENESS", "10m")
	v.SetDefault("CHAIN_REQUEST_TIMEOUT", "20s")
	v.SetDefault("CHAIN_MAX_TOKEN_SCAN", 500)

	// JWT defaults
	v.SetDefault("JWT_ENABLED", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "career-passport")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "career-passport")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")

	// Log defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")

	// Rate limit defaults
	v.SetDefault("RATELIMIT_REQUESTS_PER_SECOND", 5)
	v.SetDefault("RATELIMIT_BURST", 10)
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")
	cfg.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")
	cfg.Server.AllowOrigins = splitList(v.GetString("SERVER_ALLOW_ORIGINS"))

	// Store
	cfg.Store.Driver = strings.ToLower(v.GetString("STORE_DRIVER"))
	cfg.Store.EventsTable = v.GetString("STORE_EVENTS_TABLE")
	cfg.Store.ApplicationsTable = v.GetString("STORE_APPLICATIONS_TABLE")
	cfg.Store.MessagesTable = v.GetString("STORE_MESSAGES_TABLE")
	cfg.Store.MatchesTable = v.GetString("STORE_MATCHES_TABLE")

	// AWS
	cfg.AWS.Region = v.GetString("AWS_REGION")
	cfg.AWS.DynamoDBEndpoint = v.GetString("AWS_DYNAMODB_ENDPOINT")
	cfg.AWS.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	cfg.AWS.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")

	// Database
	cfg.Database.Host = v.GetString("DATABASE_HOST")
	cfg.Database.Port = v.GetInt("DATABASE_PORT")
	cfg.Database.User = v.GetString("DATABASE_USER")
	cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	cfg.Database.DBName = v.GetString("DATABASE_DBNAME")
	cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	cfg.Database.MaxConns = v.GetInt32("DATABASE_MAX_CONNS")
	cfg.Database.MinConns = v.GetInt32("DATABASE_MIN_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DATABASE_CONN_MAX_LIFETIME")
	cfg.Database.ConnMaxIdleTime = v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME")

	// Redis
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")

	// Chain
	cfg.Chain.RPCURL = v.GetString("CHAIN_RPC_URL")
	cfg.Chain.ChainID = v.GetInt64("CHAIN_ID")
	cfg.Chain.NFTContractAddress = v.GetString("CHAIN_NFT_CONTRACT_ADDRESS")
	cfg.Chain.StampManagerAddress = v.GetString("CHAIN_STAMP_MANAGER_ADDRESS")
	cfg.Chain.RetryDelay = v.GetDuration("CHAIN_RETRY_DELAY")
	cfg.Chain.CacheTTL = v.GetDuration("CHAIN_CACHE_TTL")
	cfg.Chain.CacheMaxStaleness = v.GetDuration("CHAIN_CACHE_MAX_STALENESS")
	cfg.Chain.RequestTimeout = v.GetDuration("CHAIN_REQUEST_TIMEOUT")
	cfg.Chain.MaxTokenScan = v.GetInt64("CHAIN_MAX_TOKEN_SCAN")

	// JWT
	cfg.JWT.Enabled = v.GetBool("JWT_ENABLED")
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.Issuer = v.GetString("JWT_ISSUER")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")

	// Log
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.OutputPath = v.GetString("LOG_OUTPUT_PATH")

	// Rate limit
	cfg.RateLimit.RequestsPerSecond = v.GetFloat64("RATELIMIT_REQUESTS_PER_SECOND")
	cfg.RateLimit.Burst = v.GetInt("RATELIMIT_BURST")

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverDynamoDB:
		if c.AWS.Region == "" {
			return fmt.Errorf("AWS region is required for the dynamodb store")
		}
	case StoreDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	if c.JWT.Enabled {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT secret is required")
		}
		if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT secret must be changed in production")
		}
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
