package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Planner  PlannerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

// PlannerConfig tunes the day-plan solver.
type PlannerConfig struct {
	DayStartHour            int     `mapstructure:"day_start_hour"`
	BlockMinutes            int     `mapstructure:"block_minutes"`
	Blocks                  int     `mapstructure:"blocks"`
	SolveTimeoutSeconds     int     `mapstructure:"solve_timeout_seconds"`
	GeneratorCooldownBlocks int     `mapstructure:"generator_cooldown_blocks"`
	GeneratorRunCostCZK     float64 `mapstructure:"generator_run_cost_czk"`
}

func (p PlannerConfig) SolveTimeout() time.Duration {
	if p.SolveTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.SolveTimeoutSeconds) * time.Second
}

// SecurityConfig carries secrets that must come from the environment, never
// from the config file.
type SecurityConfig struct {
	EncryptionKey string `envconfig:"PETPLAN_ENCRYPTION_KEY"`
	BcryptCost    int    `envconfig:"PETPLAN_BCRYPT_COST" default:"12"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Security); err != nil {
		return nil, fmt.Errorf("failed to read security environment: %w", err)
	}

	return &config, nil
}
