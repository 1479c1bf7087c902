package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	SQLite     SQLiteConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Extraction ExtractionConfig
	Ingestion  IngestionConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins []string
	Development    bool
}

type StorageConfig struct {
	Driver string
}

type SQLiteConfig struct {
	Path string
}

type PostgresConfig struct {
	DSN      string
	MaxConns int32
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled      bool
	TTLSeconds   int
	FlushOnStart bool
}

type ExtractionConfig struct {
	KeywordLimit       int
	SectionItemLimit   int
	TitleScanLines     int
	BuyerScanLines     int
	ExecutiveSentences int
	ExecutiveMaxChars  int
	HighlightSentences int
	Stopwords          []string
}

type IngestionConfig struct {
	MaxDocumentBytes    int
	MaxBatch            int
	BatchConcurrency    int
	FetchEnabled        bool
	FetchTimeoutSeconds int
}

type SecurityConfig struct {
	PreviewSecret string
}

type RateLimitConfig struct {
	Enabled              bool
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rfp-brief")

	v.SetEnvPrefix("RFP_BRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required when storage.driver is postgres")
	}
	if c.Ingestion.BatchConcurrency < 1 {
		return fmt.Errorf("ingestion.batchConcurrency must be at least 1")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 26214400)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.development", false)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("sqlite.path", "./data/rfp_brief.db")
	v.SetDefault("postgres.maxConns", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttlSeconds", 3600)
	v.SetDefault("cache.flushOnStart", false)

	v.SetDefault("extraction.keywordLimit", 12)
	v.SetDefault("extraction.sectionItemLimit", 12)
	v.SetDefault("extraction.titleScanLines", 30)
	v.SetDefault("extraction.buyerScanLines", 120)
	v.SetDefault("extraction.executiveSentences", 6)
	v.SetDefault("extraction.executiveMaxChars", 800)
	v.SetDefault("extraction.highlightSentences", 6)

	v.SetDefault("ingestion.maxDocumentBytes", 20971520)
	v.SetDefault("ingestion.maxBatch", 20)
	v.SetDefault("ingestion.batchConcurrency", 4)
	v.SetDefault("ingestion.fetchEnabled", true)
	v.SetDefault("ingestion.fetchTimeoutSeconds", 30)

	v.SetDefault("security.previewSecret", "")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.maxRequestsPerMinute", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
