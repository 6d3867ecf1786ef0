package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	Env          string
	DBDSN        string
	MediaDir     string
	TemplatesDir string
	StaticDir    string
	LogFile      string

	PasswordMinLength int
	MaxUploadBytes    int
	RateLimitMax      int
	LoginRateMax      int
	CookieSecure      bool
}

func (c Config) Production() bool { return c.Env == "production" }

// Load reads settings from the environment and an optional .env file in the
// working directory. A .env that exists but cannot be read is reported with
// the error; the returned Config is still usable.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			readErr = fmt.Errorf("read .env: %w", err)
		}
	}
	return fromViper(v), readErr
}

// Defaults returns the configuration used when nothing is set, handy for tests.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DB_DSN", "examapp.db")
	v.SetDefault("MEDIA_DIR", "./web/media")
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("STATIC_DIR", "./web/static")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("PASSWORD_MIN_LENGTH", 6)
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("RATE_LIMIT_MAX", 60)
	v.SetDefault("LOGIN_RATE_MAX", 5)
	v.SetDefault("COOKIE_SECURE", false)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Port:              v.GetString("PORT"),
		Env:               v.GetString("SERVER_ENV"),
		DBDSN:             v.GetString("DB_DSN"),
		MediaDir:          v.GetString("MEDIA_DIR"),
		TemplatesDir:      v.GetString("TEMPLATES_DIR"),
		StaticDir:         v.GetString("STATIC_DIR"),
		LogFile:           v.GetString("LOG_FILE"),
		PasswordMinLength: v.GetInt("PASSWORD_MIN_LENGTH"),
		MaxUploadBytes:    v.GetInt("MAX_UPLOAD_BYTES"),
		RateLimitMax:      v.GetInt("RATE_LIMIT_MAX"),
		LoginRateMax:      v.GetInt("LOGIN_RATE_MAX"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
	}
}
