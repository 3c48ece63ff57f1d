package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FIRESTORE_PROJECT_ID", "family-orders-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "family-orders-test" {
		t.Errorf("ProjectID = %q", cfg.Firestore.ProjectID)
	}
}

func TestLoadRequiresProject(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error without a project id")
	}
}

func TestLoadTimeoutOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FIRESTORE_PROJECT_ID", "family-orders-test")
	t.Setenv("SERVER_READ_TIMEOUT", "45")
	t.Setenv("SERVER_WRITE_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("ReadTimeout = %v, want 45s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 90*time.Second {
		t.Errorf("WriteTimeout = %v, want 90s", cfg.Server.WriteTimeout)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FIRESTORE_PROJECT_ID", "family-orders-test")
	t.Setenv("SERVER_IDLE_TIMEOUT", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for negative timeout")
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "30", want: 30 * time.Second},
		{raw: "2m", want: 2 * time.Minute},
		{raw: "0", wantErr: true},
		{raw: "later", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseDuration(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDuration(%q) error = %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
