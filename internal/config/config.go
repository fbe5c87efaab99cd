package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment
// variables and, when CONFIG_FILE is set, a YAML file.
type Config struct {
	ServerPort        string        `validate:"required,numeric"`
	DBDriver          string        `validate:"required,oneof=sqlite mysql"`
	SQLitePath        string        `validate:"required_if=DBDriver sqlite"`
	MySQLDSN          string        `validate:"required_if=DBDriver mysql"`
	ResetDB           bool
	RedisAddr         string
	RedisDB           int           `validate:"gte=0"`
	RedisPass         string
	CacheTTL          time.Duration `validate:"gt=0"`
	PasswordAlgorithm string        `validate:"required,oneof=bcrypt bcrypt-sha256 pbkdf2-sha256"`
	LogLevel          string        `validate:"required,oneof=trace debug info warn error"`
	LogFormat         string        `validate:"required,oneof=console json"`
	SwaggerHost       string
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		ServerPort:        v.GetString("server_port"),
		DBDriver:          v.GetString("db_driver"),
		SQLitePath:        v.GetString("sqlite_path"),
		MySQLDSN:          v.GetString("mysql_dsn"),
		ResetDB:           v.GetBool("reset_db"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisDB:           v.GetInt("redis_db"),
		RedisPass:         v.GetString("redis_password"),
		CacheTTL:          v.GetDuration("cache_ttl"),
		PasswordAlgorithm: v.GetString("password_algorithm"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		SwaggerHost:       v.GetString("swagger_host"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("sqlite_path", "blog.db")
	v.SetDefault("mysql_dsn", "user:password@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("reset_db", false)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_password", "")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("password_algorithm", "bcrypt")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("swagger_host", "")
}
