package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the API reads from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBHost        string `env:"DB_HOST" envDefault:"localhost"`
	DBPort        uint   `env:"DB_PORT" envDefault:"5432"`
	DBName        string `env:"DB_NAME" envDefault:"estatecrm"`
	DBUsername    string `env:"DB_USERNAME"`
	DBPassword    string `env:"DB_PASSWORD"`
	DBSecretID    string `env:"DB_SECRET_ID"`
	DBSSLDisabled bool   `env:"DB_SSL_MODE_DISABLE"`

	JWTSecret string `env:"JWT_SECRET,required"`

	CalendarWebhookURL string `env:"CALENDAR_WEBHOOK_URL"`
}

// Load reads .env if present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
