package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Bus   BusConfig
	Quota QuotaConfig
}

type AppConfig struct {
	Port              string
	Env               string
	CORSAllowedOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BusConfig selects and configures the event transport (internal/bus).
// Mode "memory" uses InMemoryBus; mode "kafka" uses KafkaBus.
type BusConfig struct {
	Mode     string
	Brokers  []string
	Topic    string
	GroupID  string
	DLQTopic string
}

// QuotaConfig drives the discount arbiter and pricer rule engine.
type QuotaConfig struct {
	Timezone           string
	DailyCap           int
	DiscountPercent    string
	HighValueThreshold string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("BUS_MODE", "memory")
	viper.SetDefault("BUS_TOPIC", "booking.events")
	viper.SetDefault("BUS_DLQ_TOPIC", "booking.events.dlq")
	viper.SetDefault("BUS_GROUP_ID", "clinic-booking-saga")
	viper.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	viper.SetDefault("QUOTA_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("MAX_DAILY_DISCOUNTS", 100)
	viper.SetDefault("DISCOUNT_PERCENT", "12")
	viper.SetDefault("HIGH_VALUE_THRESHOLD", "1000")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:              viper.GetString("APP_PORT"),
			Env:               viper.GetString("APP_ENV"),
			CORSAllowedOrigin: viper.GetString("CORS_ALLOWED_ORIGIN"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Bus: BusConfig{
			Mode:     viper.GetString("BUS_MODE"),
			Brokers:  viper.GetStringSlice("BUS_BROKERS"),
			Topic:    viper.GetString("BUS_TOPIC"),
			GroupID:  viper.GetString("BUS_GROUP_ID"),
			DLQTopic: viper.GetString("BUS_DLQ_TOPIC"),
		},
		Quota: QuotaConfig{
			Timezone:           viper.GetString("QUOTA_TIMEZONE"),
			DailyCap:           viper.GetInt("MAX_DAILY_DISCOUNTS"),
			DiscountPercent:    viper.GetString("DISCOUNT_PERCENT"),
			HighValueThreshold: viper.GetString("HIGH_VALUE_THRESHOLD"),
		},
	}

	return config, nil
}
