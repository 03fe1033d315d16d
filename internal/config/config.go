// Package config provides YAML-based configuration loading for Gangplank.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Gangplank configuration, loaded from gangplank.yaml.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	DB        DBConfig         `yaml:"db"`
	Notify    NotifyConfig     `yaml:"notify"`
	Employees []EmployeeConfig `yaml:"employees"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DBConfig holds connection settings for the MySQL server.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// NotifyConfig holds delivery settings for workflow notifications. Slack and
// Discord are optional; in-app notifications are always written.
type NotifyConfig struct {
	Slack      SlackConfig   `yaml:"slack"`
	Discord    DiscordConfig `yaml:"discord"`
	DigestCron string        `yaml:"digest_cron"`
}

// SlackConfig holds Slack delivery settings.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord delivery settings.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// EmployeeConfig seeds the built-in employee directory.
type EmployeeConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Department  string `yaml:"department"`
	Team        string `yaml:"team"`
	Supervisor  string `yaml:"supervisor"`
	Role        string `yaml:"role"`
	ProgramType string `yaml:"program_type"`
	Stage       string `yaml:"stage"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.Database == "" {
		c.DB.Database = "gangplank"
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	for i := range c.Employees {
		if c.Employees[i].Role == "" {
			c.Employees[i].Role = "employee"
		}
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required when a bot token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when a bot token is set")
	}
	for i, e := range c.Employees {
		if e.ID == "" {
			errs = append(errs, fmt.Sprintf("employees[%d].id is required", i))
		}
		if e.Name == "" {
			errs = append(errs, fmt.Sprintf("employees[%d].name is required", i))
		}
		switch e.Role {
		case "employee", "manager", "hr":
		default:
			errs = append(errs, fmt.Sprintf("employees[%d].role %q is not one of employee, manager, hr", i, e.Role))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
