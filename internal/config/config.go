package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/database"
)

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret string
}

// AdminConfig holds the bootstrap admin credentials. Empty values skip
// the bootstrap.
type AdminConfig struct {
	Email    string
	Password string
}

// KafkaConfig holds broker addresses for the event producer.
type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

// ServiceConfig holds all configuration for the store service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	CORSOrigins []string
	DBConfig    database.PostgresConfig
	JWTConfig   JWTConfig
	AdminConfig AdminConfig
	KafkaConfig KafkaConfig
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "avarus_store")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("KAFKA_BROKERS", "")

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	brokers := splitNonEmpty(v.GetString("KAFKA_BROKERS"))

	return &ServiceConfig{
		Port:        port,
		AppEnv:      v.GetString("APP_ENV"),
		CORSOrigins: splitNonEmpty(v.GetString("CORS_ORIGINS")),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		AdminConfig: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: brokers,
			Enabled: len(brokers) > 0,
		},
	}, nil
}

func splitNonEmpty(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
