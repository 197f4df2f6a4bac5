package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	API         API
	Web         Web
	TelegramBot TelegramBot
	Monitor     Monitor
	Defaults    Defaults
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// API points at the play parsing and simulation service.
type API struct {
	BaseURL string `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000"`
	// Zero means no client-side timeout.
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"0s"`
}

type Web struct {
	Addr        string   `envconfig:"WEB_ADDR" default:":3000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// TelegramBot is optional; the chat front end only starts when Token is set.
type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type Monitor struct {
	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"30s"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	Location       string        `envconfig:"TIMEZONE" default:"America/Chicago"`
}

type Defaults struct {
	Offense string `envconfig:"DEFAULT_OFFENSE" default:"KC"`
	Defense string `envconfig:"DEFAULT_DEFENSE" default:"BUF"`
	Samples int    `envconfig:"DEFAULT_SAMPLES" default:"1000"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t TelegramBot) Enabled() bool {
	return t.Token != ""
}
