package utils

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// DevJWTSecret is only accepted outside production.
const DevJWTSecret = "finscope-dev-secret-do-not-use-in-production"

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	OTP      OTPConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Name        string
	Env         string
	Port        string
	Debug       bool
	LogPath     string
	AllowOrigin string
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type EmailConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	From           string
	TimeoutSeconds int
}

// Configured reports whether an SMTP relay is set up.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

type OTPConfig struct {
	ExpiryMinutes          int
	MaxAttempts            int
	CleanupIntervalMinutes int
}

type RedisConfig struct {
	Addr string
	DB   int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "finscope")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("JWT_ISSUER", "finscope")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_TIMEOUT_SECONDS", 15)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("OTP_CLEANUP_INTERVAL_MINUTES", 15)

	// .env is optional, the environment wins anyway
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Env:         viper.GetString("APP_ENV"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			AllowOrigin: viper.GetString("CORS_ALLOWED_ORIGIN"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
			MinConns: viper.GetInt32("DB_MIN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:           viper.GetString("SMTP_HOST"),
			Port:           viper.GetInt("SMTP_PORT"),
			User:           viper.GetString("SMTP_USER"),
			Password:       viper.GetString("SMTP_PASS"),
			From:           viper.GetString("EMAIL_FROM"),
			TimeoutSeconds: viper.GetInt("EMAIL_TIMEOUT_SECONDS"),
		},
		OTP: OTPConfig{
			ExpiryMinutes:          viper.GetInt("OTP_EXPIRY_MINUTES"),
			MaxAttempts:            viper.GetInt("OTP_MAX_ATTEMPTS"),
			CleanupIntervalMinutes: viper.GetInt("OTP_CLEANUP_INTERVAL_MINUTES"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			DB:   viper.GetInt("REDIS_DB"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate fails closed for production and fills development fallbacks.
func (c *Config) Validate() error {
	if c.App.IsProduction() {
		switch {
		case c.JWT.Secret == "":
			return errors.New("JWT_SECRET is required in production")
		case c.JWT.Secret == DevJWTSecret:
			return errors.New("JWT_SECRET must not be the development secret in production")
		case len(c.JWT.Secret) < 32:
			return errors.New("JWT_SECRET must be at least 32 bytes in production")
		}
		if !c.Email.Configured() || c.Email.From == "" {
			return errors.New("SMTP_HOST, SMTP_USER, SMTP_PASS and EMAIL_FROM are required in production")
		}
	} else if c.JWT.Secret == "" {
		c.JWT.Secret = DevJWTSecret
	}

	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.OTP.ExpiryMinutes <= 0 {
		return fmt.Errorf("OTP_EXPIRY_MINUTES must be positive, got %d", c.OTP.ExpiryMinutes)
	}
	if c.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be positive, got %d", c.OTP.MaxAttempts)
	}
	if c.Email.From == "" {
		c.Email.From = c.Email.User
	}

	return nil
}
