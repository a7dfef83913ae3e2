package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeTest        Mode = "test"
	ModeProduction  Mode = "production"
)

type HTTPSettings struct {
	Addr            string
	BaseURL         string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

type LoggingSettings struct {
	Debug     bool
	JSON      bool
	LogToFile bool
	LogsDir   string
}

type DatabaseSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN is the postgres connection string. Timestamps are stored in UTC.
func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=%s TimeZone=UTC",
		d.User, d.Password, d.Name, d.Host, d.Port, d.SSLMode)
}

type RedisSettings struct {
	Host     string
	Port     string
	Password string
}

type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Domain   string
}

type AuthSettings struct {
	Secret      string
	TokenTTL    time.Duration
	CodeTTL     time.Duration
	AdminEmails []string
}

type TelegramSettings struct {
	Token            string
	ModerationChatID int64
	LogLevel         zapcore.Level
}

type RetentionSettings struct {
	Schedule string
}

type LogosSettings struct {
	Dir       string
	URLPrefix string
}

// Settings is the resolved configuration of the service.
type Settings struct {
	Mode      Mode
	Location  *time.Location
	HTTP      HTTPSettings
	Logging   LoggingSettings
	Database  DatabaseSettings
	Redis     RedisSettings
	SMTP      SMTPSettings
	Auth      AuthSettings
	Telegram  TelegramSettings
	Retention RetentionSettings
	Logos     LogosSettings
}

// SendsMail reports whether login codes go out by email instead of the log.
func (s Settings) SendsMail() bool {
	return s.Mode == ModeProduction || (s.Mode == ModeDevelopment && s.SMTP.Host != "")
}

// NotifiesTelegram reports whether a moderation bot is configured and allowed in this mode.
func (s Settings) NotifiesTelegram() bool {
	return s.Mode != ModeTest && s.Telegram.Token != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeDevelopment))
	v.SetDefault("timezone", "Europe/Tallinn")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.base-url", "http://localhost:8080")
	v.SetDefault("http.cors-origins", []string{})
	v.SetDefault("http.shutdown-timeout", "10s")
	v.SetDefault("http.max-upload-bytes", 5<<20)

	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.log-to-file", false)
	v.SetDefault("logging.logs-dir", "logs")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "runclubs")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "runclubs")
	v.SetDefault("database.ssl-mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@jooksuklubid.ee")
	v.SetDefault("smtp.domain", "jooksuklubid.ee")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token-ttl", "168h")
	v.SetDefault("auth.code-ttl", "10m")
	v.SetDefault("auth.admin-emails", []string{})

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.moderation-chat-id", 0)
	v.SetDefault("telegram.log-level", "error")

	v.SetDefault("retention.schedule", "0 3 * * *")

	v.SetDefault("logos.dir", "data/logos")
	v.SetDefault("logos.url-prefix", "/static/logos")
}

// Resolve reads every setting from v once and checks the mode-specific requirements.
func Resolve(v *viper.Viper) (Settings, error) {
	setDefaults(v)

	s := Settings{
		Mode: Mode(strings.ToLower(v.GetString("mode"))),
		HTTP: HTTPSettings{
			Addr:            v.GetString("http.addr"),
			BaseURL:         strings.TrimRight(v.GetString("http.base-url"), "/"),
			CORSOrigins:     stringList(v, "http.cors-origins"),
			ShutdownTimeout: v.GetDuration("http.shutdown-timeout"),
			MaxUploadBytes:  v.GetInt64("http.max-upload-bytes"),
		},
		Logging: LoggingSettings{
			Debug:     v.GetBool("logging.debug"),
			JSON:      v.GetBool("logging.json"),
			LogToFile: v.GetBool("logging.log-to-file"),
			LogsDir:   v.GetString("logging.logs-dir"),
		},
		Database: DatabaseSettings{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.ssl-mode"),
		},
		Redis: RedisSettings{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
		},
		SMTP: SMTPSettings{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			Domain:   v.GetString("smtp.domain"),
		},
		Auth: AuthSettings{
			Secret:      v.GetString("auth.secret"),
			TokenTTL:    v.GetDuration("auth.token-ttl"),
			CodeTTL:     v.GetDuration("auth.code-ttl"),
			AdminEmails: stringList(v, "auth.admin-emails"),
		},
		Telegram: TelegramSettings{
			Token:            v.GetString("telegram.token"),
			ModerationChatID: v.GetInt64("telegram.moderation-chat-id"),
		},
		Retention: RetentionSettings{
			Schedule: v.GetString("retention.schedule"),
		},
		Logos: LogosSettings{
			Dir:       v.GetString("logos.dir"),
			URLPrefix: v.GetString("logos.url-prefix"),
		},
	}

	var errs []error

	switch s.Mode {
	case ModeDevelopment:
		s.Logging.Debug = true
		if s.Auth.Secret == "" {
			s.Auth.Secret = "development-secret"
		}
	case ModeTest:
		if s.Auth.Secret == "" {
			s.Auth.Secret = "test-secret"
		}
	case ModeProduction:
		s.Logging.JSON = true
		if s.Auth.Secret == "" {
			errs = append(errs, errors.New("auth.secret is required in production"))
		}
		if s.SMTP.Host == "" {
			errs = append(errs, errors.New("smtp.host is required in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", s.Mode))
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	s.Location = loc

	if err = s.Telegram.LogLevel.UnmarshalText([]byte(v.GetString("telegram.log-level"))); err != nil {
		errs = append(errs, fmt.Errorf("telegram.log-level: %w", err))
	}
	if s.Telegram.Token != "" && s.Telegram.ModerationChatID == 0 {
		errs = append(errs, errors.New("telegram.moderation-chat-id is required with telegram.token"))
	}
	if s.Auth.TokenTTL <= 0 || s.Auth.CodeTTL <= 0 {
		errs = append(errs, errors.New("auth.token-ttl and auth.code-ttl must be positive"))
	}

	return s, errors.Join(errs...)
}

// stringList reads a list that may also come from the environment as "a,b c".
func stringList(v *viper.Viper, key string) []string {
	out := make([]string, 0)
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
