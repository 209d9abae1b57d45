package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the bot and the offline CLI.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	OwnerChatID    int64
	ReportInterval time.Duration
	BackupDir      string
	BackupTime     string
	BackupKeep     int
	Timezone       *time.Location
}

// Load reads configuration from environment variables with sane defaults.
// The bot cannot start without TELEGRAM_TOKEN.
func Load() (Config, error) {
	cfg, err := LoadLocal()
	if err != nil {
		return cfg, err
	}
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return cfg, nil
}

// LoadLocal is Load without the bot token requirement.
func LoadLocal() (Config, error) {
	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		BackupDir:      strings.TrimSpace(os.Getenv("BACKUP_DIR")),
		Timezone:       time.Local,
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "daily_planner.db"
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}

	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}

	if raw, ok := os.LookupEnv("BACKUP_TIME"); ok {
		cfg.BackupTime = strings.TrimSpace(raw)
	} else {
		cfg.BackupTime = "03:00"
	}
	if cfg.BackupTime != "" {
		if _, _, err := ParseClock(cfg.BackupTime); err != nil {
			return cfg, fmt.Errorf("BACKUP_TIME: %w", err)
		}
	}

	cfg.BackupKeep = 14
	if raw := strings.TrimSpace(os.Getenv("BACKUP_KEEP")); raw != "" {
		keep, err := strconv.Atoi(raw)
		if err != nil || keep < 1 {
			return cfg, fmt.Errorf("BACKUP_KEEP must be a positive integer, got %q", raw)
		}
		cfg.BackupKeep = keep
	}

	if raw := strings.TrimSpace(os.Getenv("OWNER_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("OWNER_CHAT_ID must be a chat id, got %q", raw)
		}
		cfg.OwnerChatID = id
	}

	if raw := strings.TrimSpace(os.Getenv("TZ_NAME")); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return cfg, fmt.Errorf("load timezone %q: %w", raw, err)
		}
		cfg.Timezone = loc
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

// ParseClock reads an HH:MM time of day.
func ParseClock(raw string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}
