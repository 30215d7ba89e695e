package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type SchedulerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	TriggerHour  int           `mapstructure:"trigger_hour"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

type EmailConfig struct {
	From         string        `mapstructure:"from"`
	SMTPHost     string        `mapstructure:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Cc           []string      `mapstructure:"cc"`
	DomainSuffix string        `mapstructure:"domain_suffix"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
}

type Config struct {
	DatabaseURL   string          `mapstructure:"database_url"`
	ServerPort    string          `mapstructure:"server_port"`
	JWTSecret     string          `mapstructure:"jwt_secret"`
	PublicBaseURL string          `mapstructure:"public_base_url"`
	Timezone      string          `mapstructure:"timezone"`
	Email         EmailConfig     `mapstructure:"email"`
	Scheduler     SchedulerConfig `mapstructure:"scheduler"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}
	if config.DatabaseURL == "" {
		log.Fatal("Database URL must be set in the config file")
	}
	if config.Timezone == "" {
		// "Day" boundaries for the notification engine live in a single
		// fixed zone; the register is maintained in India.
		config.Timezone = "Asia/Kolkata"
	}
	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}
	if config.Email.SendTimeout == 0 {
		config.Email.SendTimeout = 30 * time.Second
	}
	if config.Scheduler.PollInterval == 0 {
		config.Scheduler.PollInterval = 5 * time.Minute
	}
	if config.Scheduler.TriggerHour == 0 {
		config.Scheduler.TriggerHour = 9
	}
	if config.Scheduler.RunTimeout == 0 {
		config.Scheduler.RunTimeout = 10 * time.Minute
	}

	return &config
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
