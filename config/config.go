package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is returned when neither DATABASE_URL nor DB_HOST is set.
var ErrMissingDatabaseURL = errors.New("database connection string is not configured")

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Twilio   TwilioConfig
	OpenAI   OpenAIConfig
	Drafting DraftingConfig
}

type AppConfig struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string
	CORSOrigin    string
}

type DBConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxIdleConns int
	MaxOpenConns int
}

// DSN returns the connection string, preferring URL over the individual parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig describes how identity tokens issued by the external auth provider are verified.
type AuthConfig struct {
	Secret string
	Issuer string
}

type TwilioConfig struct {
	AccountSID        string
	AuthToken         string
	WhatsAppNumber    string
	ValidateSignature bool
	SendRatePerSecond float64
}

type OpenAIConfig struct {
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

type DraftingConfig struct {
	HistoryWindow time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("APP_CORS_ORIGIN", "*")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("TWILIO_SEND_RATE", 10)
	viper.SetDefault("OPENAI_MODEL", "gpt-4o")
	viper.SetDefault("OPENAI_MAX_TOKENS", 500)

	openAITimeout, err := time.ParseDuration(viper.GetString("OPENAI_TIMEOUT"))
	if err != nil {
		openAITimeout = 30 * time.Second
	}

	historyWindow, err := time.ParseDuration(viper.GetString("DRAFT_HISTORY_WINDOW"))
	if err != nil {
		historyWindow = 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:          viper.GetString("APP_PORT"),
			Env:           viper.GetString("APP_ENV"),
			LogLevel:      viper.GetString("APP_LOG_LEVEL"),
			PublicBaseURL: viper.GetString("PUBLIC_BASE_URL"),
			CORSOrigin:    viper.GetString("APP_CORS_ORIGIN"),
		},
		DB: DBConfig{
			URL:          viper.GetString("DATABASE_URL"),
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Name:         viper.GetString("DB_NAME"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			Secret: viper.GetString("AUTH_JWT_SECRET"),
			Issuer: viper.GetString("AUTH_JWT_ISSUER"),
		},
		Twilio: TwilioConfig{
			AccountSID:        viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:         viper.GetString("TWILIO_AUTH_TOKEN"),
			WhatsAppNumber:    viper.GetString("TWILIO_WHATSAPP_NUMBER"),
			ValidateSignature: viper.GetBool("TWILIO_VALIDATE_SIGNATURE"),
			SendRatePerSecond: viper.GetFloat64("TWILIO_SEND_RATE"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    viper.GetString("OPENAI_API_KEY"),
			Model:     viper.GetString("OPENAI_MODEL"),
			Timeout:   openAITimeout,
			MaxTokens: viper.GetInt("OPENAI_MAX_TOKENS"),
		},
		Drafting: DraftingConfig{
			HistoryWindow: historyWindow,
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports configuration that makes the process unable to start.
// Messaging credentials are checked lazily by the gateway instead.
func (c *Config) Validate() error {
	if c.DB.URL == "" && c.DB.Host == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
