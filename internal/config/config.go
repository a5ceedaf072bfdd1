package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emrgen/content/internal/cache"
	"github.com/emrgen/content/internal/events"
	"github.com/emrgen/content/internal/publish"
)

type Config struct {
	Env         string
	DB          DBConfig
	Publish     publish.Config
	Compression string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Jobs        JobsConfig
}

type DBConfig struct {
	Type string
	// DSN is the postgres connection string or the sqlite file path.
	DSN string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers string
	Topic   string
}

type JobsConfig struct {
	CacheSync     string
	OrphanCleaner string
	OrphanGrace   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.dsn", filepath.Join(".tmp", "db", "content.db"))
	v.SetDefault("public.path", filepath.Join(".tmp", "public"))
	v.SetDefault("public.staging", "")
	v.SetDefault("public.images.retrieve", false)
	v.SetDefault("public.images.base_dir", ".")
	v.SetDefault("public.images.max_width", 0)
	v.SetDefault("compression", "gzip")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", events.DefaultTopic)
	v.SetDefault("jobs.cache_sync", "@every 5m")
	v.SetDefault("jobs.orphan_cleaner", "@every 1h")
	v.SetDefault("jobs.orphan_grace", time.Hour)
}

// LoadConfig reads content.yml from the working directory or ./config when present, then the
// CONTENT_* environment variables, .env included. Nested keys use underscores, for example
// CONTENT_DB_DSN or CONTENT_PUBLIC_PATH.
func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("content")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logrus.Warnf("error reading config file: %v", err)
		}
	}

	v.SetEnvPrefix("content")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Env: v.GetString("env"),
		DB: DBConfig{
			Type: v.GetString("db.type"),
			DSN:  v.GetString("db.dsn"),
		},
		Publish: publish.Config{
			PublicPath:     v.GetString("public.path"),
			StagingPath:    v.GetString("public.staging"),
			RetrieveImages: v.GetBool("public.images.retrieve"),
			ImagesBaseDir:  v.GetString("public.images.base_dir"),
			MaxImageWidth:  v.GetInt("public.images.max_width"),
		},
		Compression: v.GetString("compression"),
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: v.GetString("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Jobs: JobsConfig{
			CacheSync:     v.GetString("jobs.cache_sync"),
			OrphanCleaner: v.GetString("jobs.orphan_cleaner"),
			OrphanGrace:   v.GetDuration("jobs.orphan_grace"),
		},
	}
}

// GetDb opens the configured database. It panics when the database cannot be opened.
func GetDb(cfg *Config) *gorm.DB {
	gormConfig := &gorm.Config{TranslateError: true}
	if cfg.Env != "dev" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	var dialector gorm.Dialector
	switch cfg.DB.Type {
	case "postgres":
		dialector = postgres.Open(cfg.DB.DSN)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.DB.DSN), os.ModePerm); err != nil {
			logrus.Fatalf("failed to create db directory: %v", err)
		}
		dialector = sqlite.Open(cfg.DB.DSN)
	default:
		logrus.Fatalf("unknown db type %q, expected sqlite or postgres", cfg.DB.Type)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		panic(err)
	}
	return db
}

// GetPublicationCache returns the redis cache when enabled, a no-op cache otherwise.
func GetPublicationCache(cfg *Config) cache.PublicationCache {
	if !cfg.Redis.Enabled {
		return cache.NewNopPublicationCache()
	}
	return cache.NewRedisPublicationCache(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
}

// GetNotifier returns the kafka notifier when enabled, a no-op notifier otherwise.
func GetNotifier(cfg *Config) events.Notifier {
	if !cfg.Kafka.Enabled {
		return events.NewNopNotifier()
	}
	notifier, err := events.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		logrus.Errorf("kafka unavailable, publication events disabled: %v", err)
		return events.NewNopNotifier()
	}
	return notifier
}
