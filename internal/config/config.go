package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	JWT struct {
		AccessSecret  string        `env:"JWT_SECRET,required"`
		RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
		AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
		RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	}

	Telegram struct {
		BotToken      string `env:"TELEGRAM_BOT_TOKEN"`
		WebhookSecret string `env:"TELEGRAM_SECRET_TOKEN" envDefault:"change_me"`
		InternalToken string `env:"INTERNAL_TOKEN" envDefault:"changeme"`
		// Outbound queue capacity; sends beyond this are dropped, never blocked on.
		QueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
	}

	SMTP struct {
		Host     string `env:"EMAIL_HOST" envDefault:"smtp.gmail.com"`
		Port     int    `env:"EMAIL_PORT" envDefault:"465"`
		Username string `env:"EMAIL_USER"`
		Password string `env:"EMAIL_PASS"`
		From     string `env:"EMAIL_FROM" envDefault:"NutriSteck Secure Banking <no-reply@nutristeck.com>"`
	}

	Admin struct {
		Name     string `env:"DEFAULT_ADMIN_NAME" envDefault:"System Administrator"`
		Username string `env:"DEFAULT_ADMIN_USERNAME" envDefault:"superadmin"`
		Email    string `env:"DEFAULT_ADMIN_EMAIL" envDefault:"admin@nutristeck.com"`
		Password string `env:"DEFAULT_ADMIN_PASSWORD" envDefault:"Admin@1413"`
		PIN      string `env:"DEFAULT_ADMIN_PIN" envDefault:"0000"`
	}
}

func Load() (*Config, error) {
	// Ignore a missing .env file; in production the variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
