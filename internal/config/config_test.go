package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TELEGRAM_TOKEN", "DATABASE_URL", "REPORT_INTERVAL_HOURS", "BACKUP_DIR", "BACKUP_KEEP", "OWNER_CHAT_ID", "TZ_NAME"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "daily_planner.db" {
		t.Fatalf("DatabaseURL=%q", cfg.DatabaseURL)
	}
	if cfg.ReportInterval != 5*time.Hour {
		t.Fatalf("ReportInterval=%v", cfg.ReportInterval)
	}
	if cfg.BackupDir != "backups" || cfg.BackupKeep != 14 {
		t.Fatalf("backup settings=%q/%d", cfg.BackupDir, cfg.BackupKeep)
	}
	if cfg.OwnerChatID != 0 {
		t.Fatalf("OwnerChatID=%d", cfg.OwnerChatID)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error without TELEGRAM_TOKEN")
	}
	if _, err := LoadLocal(); err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "/tmp/planner.db")
	t.Setenv("REPORT_INTERVAL_HOURS", "2")
	t.Setenv("BACKUP_KEEP", "3")
	t.Setenv("BACKUP_TIME", "")
	t.Setenv("OWNER_CHAT_ID", "-1001234")
	t.Setenv("TZ_NAME", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "/tmp/planner.db" || cfg.ReportInterval != 2*time.Hour {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.BackupKeep != 3 || cfg.BackupTime != "" {
		t.Fatalf("BackupKeep=%d BackupTime=%q", cfg.BackupKeep, cfg.BackupTime)
	}
	if cfg.OwnerChatID != -1001234 || cfg.Timezone != time.UTC {
		t.Fatalf("OwnerChatID=%d Timezone=%v", cfg.OwnerChatID, cfg.Timezone)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	tests := map[string]string{
		"BACKUP_KEEP":   "zero",
		"OWNER_CHAT_ID": "me",
		"BACKUP_TIME":   "25:00",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := LoadLocal(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := map[string]time.Duration{
		"":    0,
		"3":   3 * time.Hour,
		"1.5": 90 * time.Minute,
		"-1":  0,
		"abc": 0,
	}
	for raw, want := range tests {
		if got := parseInterval(raw); got != want {
			t.Fatalf("parseInterval(%q)=%v, want %v", raw, got, want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in           string
		hour, minute int
		wantErr      bool
	}{
		{"03:00", 3, 0, false},
		{" 23:59 ", 23, 59, false},
		{"3", 0, 0, true},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"ab:cd", 0, 0, true},
	}
	for _, tt := range tests {
		hour, minute, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseClock(%q) err=%v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && (hour != tt.hour || minute != tt.minute) {
			t.Fatalf("ParseClock(%q)=%d:%d", tt.in, hour, minute)
		}
	}
}
