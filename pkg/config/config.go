package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env        string `env:"APP_ENV" env-default:"development"`
		Port       int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl  string `env:"SENTRY_URL"`
		CronSecret string `env:"CRON_SECRET"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Twitter struct {
		ApiUrl   string `env:"TWITTER_API_URL" env-default:"http://localhost:3100"`
		ApiToken string `env:"TWITTER_API_TOKEN"`
	}
	Fetch struct {
		Concurrency  int    `env:"FETCH_CONCURRENCY" env-default:"3"`
		PerUserLimit int    `env:"FETCH_PER_USER_LIMIT" env-default:"50"`
		Cron         string `env:"FETCH_CRON"`
	}
	Telegram struct {
		User    int64  `env:"TELEGRAM_USER"`
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
	Alert struct {
		OutlierThreshold float64 `env:"ALERT_OUTLIER_THRESHOLD" env-default:"3.0"`
	}
}

// GetDSN returns the lib/pq connection string for the configured database.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode)
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
