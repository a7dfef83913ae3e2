package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	postgresStorage "github.com/jooksuklubid/runclubs/internal/adapters/database/postgres"
	"github.com/jooksuklubid/runclubs/internal/adapters/database/redis"
	"github.com/jooksuklubid/runclubs/pkg/logger"
)

const envPrefix = "RUNCLUBS"

type Config struct {
	Settings
	Database   *gorm.DB
	Redis      *redis.Client
	SMTPDialer *gomail.Dialer
}

// Load reads .env (when present) into the process environment and then the YAML file
// at path. Environment variables such as RUNCLUBS_DATABASE_HOST override file values.
func Load(path string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	return v, nil
}

// Get resolves the settings, initializes the logger and opens the database,
// redis and SMTP handles.
func Get(ctx context.Context, path string) (*Config, error) {
	v, err := Load(path)
	if err != nil {
		return nil, err
	}
	settings, err := Resolve(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	err = logger.Init(logger.Config{
		Debug:        settings.Logging.Debug,
		JSON:         settings.Logging.JSON,
		TimeLocation: settings.Location,
		LogToFile:    settings.Logging.LogToFile,
		LogsDir:      settings.Logging.LogsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Log.Infof("Starting in %s mode", settings.Mode)

	gormConfig := &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	}
	if settings.Mode == ModeDevelopment {
		gormConfig.Logger = gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
	}

	database, err := gorm.Open(postgres.Open(settings.Database.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	logger.Log.Info("Successfully connected to the database")

	if err = database.WithContext(ctx).AutoMigrate(postgresStorage.Migrations...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := redis.New(ctx, redis.Options{
		Host:     settings.Redis.Host,
		Port:     settings.Redis.Port,
		Password: settings.Redis.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Log.Info("Successfully connected to redis")

	var dialer *gomail.Dialer
	if settings.SendsMail() {
		dialer = gomail.NewDialer(settings.SMTP.Host, settings.SMTP.Port, settings.SMTP.User, settings.SMTP.Password)
	}

	return &Config{
		Settings:   settings,
		Database:   database,
		Redis:      redisClient,
		SMTPDialer: dialer,
	}, nil
}

// Close releases the database and redis handles.
func (c *Config) Close() error {
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.Database != nil {
		if sqlDB, err := c.Database.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
