package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB      int    `mapstructure:"REDIS_LOCK_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Slot generation tuning.
	GenerateChunkDays int `mapstructure:"GENERATE_CHUNK_DAYS"`
	PersistBatchSize  int `mapstructure:"PERSIST_BATCH_SIZE"`

	// Recurrence horizons, in months.
	RecurrenceScanMonths    int `mapstructure:"RECURRENCE_SCAN_MONTHS"`
	RecurrenceForeverMonths int `mapstructure:"RECURRENCE_FOREVER_MONTHS"`

	// Periodic triggers (cron specs).
	ExtendCronSpec   string `mapstructure:"EXTEND_CRON_SPEC"`
	CompleteCronSpec string `mapstructure:"COMPLETE_CRON_SPEC"`
	WaitlistCronSpec string `mapstructure:"WAITLIST_CRON_SPEC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "slotwise")
	viper.SetDefault("GENERATE_CHUNK_DAYS", 30)
	viper.SetDefault("PERSIST_BATCH_SIZE", 250)
	viper.SetDefault("RECURRENCE_SCAN_MONTHS", 6)
	viper.SetDefault("RECURRENCE_FOREVER_MONTHS", 12)
	viper.SetDefault("EXTEND_CRON_SPEC", "0 2 * * *")
	viper.SetDefault("COMPLETE_CRON_SPEC", "30 0 * * *")
	viper.SetDefault("WAITLIST_CRON_SPEC", "* * * * *")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
