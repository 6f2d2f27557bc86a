package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atriumhq/service-reservation/pkg/database"
)

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
}

// OverdueConfig holds the grace periods and cadence for the overdue
// promotion sweep. Grace periods are deployment configuration, not
// constants.
type OverdueConfig struct {
	GracePending  time.Duration
	GraceCheckin  time.Duration
	GraceCheckout time.Duration
	SweepInterval time.Duration
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port     string
	AppEnv   string
	DBConfig database.PostgresConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Overdue  OverdueConfig
}

// Load reads configuration from RESERVATION_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RESERVATION")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8084")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reservations")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "atrium.")
	v.SetDefault("GRACE_PENDING", "30m")
	v.SetDefault("GRACE_CHECKIN", "30m")
	v.SetDefault("GRACE_CHECKOUT", "1h")
	v.SetDefault("SWEEP_INTERVAL", "15m")

	appEnv := v.GetString("APP_ENV")
	if v.GetString("JWT_SECRET") == "" {
		if appEnv != "development" {
			return nil, fmt.Errorf("RESERVATION_JWT_SECRET is required outside development")
		}
		v.SetDefault("JWT_SECRET", "dev-only-secret")
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: appEnv,
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Overdue: OverdueConfig{
			GracePending:  v.GetDuration("GRACE_PENDING"),
			GraceCheckin:  v.GetDuration("GRACE_CHECKIN"),
			GraceCheckout: v.GetDuration("GRACE_CHECKOUT"),
			SweepInterval: v.GetDuration("SWEEP_INTERVAL"),
		},
	}, nil
}
