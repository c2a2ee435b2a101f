package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Slack    SlackConfig    `yaml:"slack"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Standup  StandupConfig  `yaml:"standup"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`

	// envErrs holds environment values that did not parse.
	envErrs []error
}

type ServerConfig struct {
	Port   int  `yaml:"port"`
	Tunnel bool `yaml:"tunnel"`
}

type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	AppToken      string `yaml:"app_token"`
	SigningSecret string `yaml:"signing_secret"`
}

type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Range           string `yaml:"range"`
	CredentialsFile string `yaml:"credentials_file"`
}

type StandupConfig struct {
	Members         []string `yaml:"members"`
	Schedule        string   `yaml:"schedule"`
	Timezone        string   `yaml:"timezone"`
	Deadline        string   `yaml:"deadline"`
	SummarySchedule string   `yaml:"summary_schedule"`
	SummaryChannel  string   `yaml:"summary_channel"`
	Concurrency     int      `yaml:"concurrency"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

var defaultPaths = []string{"etc/standup.yaml", "/etc/standupbot/config.yaml"}

// Load builds the configuration from defaults, the first readable YAML file
// and finally the environment. An explicit configFile that cannot be read
// or parsed is an error; the default locations are optional.
func Load(configFile string) (*Config, error) {
	c := &Config{
		Server: ServerConfig{Port: 8080},
		Sheets: SheetsConfig{Range: "A:F"},
		Standup: StandupConfig{
			Schedule:    "0 9 * * 1-5",
			Timezone:    "Asia/Kolkata",
			Deadline:    "11:00 AM",
			Concurrency: 4,
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("Load: failed to read config file %s: %w", configFile, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("Load: failed to parse config file %s: %w", configFile, err)
		}
	} else {
		for _, path := range defaultPaths {
			if data, err := os.ReadFile(path); err == nil {
				if err := yaml.Unmarshal(data, c); err != nil {
					return nil, fmt.Errorf("Load: failed to parse config file %s: %w", path, err)
				}
				break
			}
		}
	}

	envOverride(&c.Slack.BotToken, "SLACK_BOT_TOKEN")
	envOverride(&c.Slack.AppToken, "SLACK_APP_TOKEN")
	envOverride(&c.Slack.SigningSecret, "SLACK_SIGNING_SECRET")
	envOverride(&c.Sheets.SpreadsheetID, "SPREADSHEET_ID")
	envOverride(&c.Sheets.Range, "SHEET_RANGE")
	envOverride(&c.Sheets.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	envOverride(&c.Standup.Schedule, "STANDUP_SCHEDULE")
	envOverride(&c.Standup.Timezone, "STANDUP_TIMEZONE")
	envOverride(&c.Standup.Deadline, "STANDUP_DEADLINE")
	envOverride(&c.Standup.SummarySchedule, "SUMMARY_SCHEDULE")
	envOverride(&c.Standup.SummaryChannel, "SUMMARY_CHANNEL")
	envOverride(&c.Database.URL, "DATABASE_URL")
	envOverride(&c.Redis.URL, "REDIS_URL")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	c.envOverrideInt(&c.Server.Port, "PORT")
	c.envOverrideInt(&c.Standup.Concurrency, "BROADCAST_CONCURRENCY")
	c.envOverrideBool(&c.Server.Tunnel, "NGROK_TUNNEL")
	if v := os.Getenv("TEAM_MEMBERS"); v != "" {
		c.Standup.Members = ParseMembers(v)
	}

	return c, nil
}

// ParseMembers splits a comma separated list of Slack user ids, dropping
// blanks and repeats while keeping the original order.
func ParseMembers(s string) []string {
	seen := make(map[string]bool)
	var members []string
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	return members
}

// Validate reports every missing or malformed setting in one error.
func (c *Config) Validate() error {
	err := multierr.Combine(c.envErrs...)
	if c.Slack.BotToken == "" {
		err = multierr.Append(err, errors.New("SLACK_BOT_TOKEN is required"))
	}
	if c.Slack.AppToken == "" && c.Slack.SigningSecret == "" {
		err = multierr.Append(err, errors.New("either SLACK_APP_TOKEN or SLACK_SIGNING_SECRET is required"))
	}
	if c.Sheets.SpreadsheetID == "" {
		err = multierr.Append(err, errors.New("SPREADSHEET_ID is required"))
	}
	if len(c.Standup.Members) == 0 {
		err = multierr.Append(err, errors.New("TEAM_MEMBERS must list at least one user"))
	}
	if _, locErr := time.LoadLocation(c.Standup.Timezone); locErr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid STANDUP_TIMEZONE %q: %w", c.Standup.Timezone, locErr))
	}
	if (c.Standup.SummarySchedule == "") != (c.Standup.SummaryChannel == "") {
		err = multierr.Append(err, errors.New("SUMMARY_SCHEDULE and SUMMARY_CHANNEL must be set together"))
	}
	if c.Standup.Concurrency < 1 {
		err = multierr.Append(err, errors.New("BROADCAST_CONCURRENCY must be at least 1"))
	}
	return err
}

// Location returns the standup timezone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Standup.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			c.envErrs = append(c.envErrs, fmt.Errorf("invalid %s %q: must be an integer", key, v))
			return
		}
		*dst = n
	}
}

func (c *Config) envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			c.envErrs = append(c.envErrs, fmt.Errorf("invalid %s %q: must be true or false", key, v))
			return
		}
		*dst = b
	}
}
