package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server        ServerConfig
	Firestore     FirestoreConfig
	Storage       StorageConfig
	Rendering     RenderingConfig
	Stamping      StampingConfig
	Notifications NotificationConfig
	Security      SecurityConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores case database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// StorageConfig names the bucket that stores generated order documents.
type StorageConfig struct {
	DocumentsBucket string
}

// RenderingConfig locates the document-assembly service.
type RenderingConfig struct {
	Endpoint  string
	AuthToken string
}

// StampingConfig locates the amendment-stamping service.
type StampingConfig struct {
	Endpoint  string
	AuthToken string
}

// NotificationConfig names the Pub/Sub topic the email service consumes.
type NotificationConfig struct {
	ProjectID string
	Topic     string
}

// SecurityConfig groups server-to-server authentication settings.
type SecurityConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

// Load reads configuration from the environment, optionally seeding it from a
// local .env file first. Real environment variables always win.
func Load() (Config, error) {
	if err := loadEnvFile(envOr("ENV_FILE", defaultEnvFile)); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         envOr("PORT", defaultPort),
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Firestore: FirestoreConfig{
			ProjectID:    envOr("FIRESTORE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
			EmulatorHost: os.Getenv("FIRESTORE_EMULATOR_HOST"),
		},
		Storage: StorageConfig{
			DocumentsBucket: os.Getenv("DOCUMENTS_BUCKET"),
		},
		Rendering: RenderingConfig{
			Endpoint:  os.Getenv("RENDERING_ENDPOINT"),
			AuthToken: os.Getenv("RENDERING_AUTH_TOKEN"),
		},
		Stamping: StampingConfig{
			Endpoint:  os.Getenv("STAMPING_ENDPOINT"),
			AuthToken: os.Getenv("STAMPING_AUTH_TOKEN"),
		},
		Notifications: NotificationConfig{
			ProjectID: envOr("NOTIFICATIONS_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
			Topic:     os.Getenv("NOTIFICATIONS_TOPIC"),
		},
		Security: SecurityConfig{
			JWKSURL:  os.Getenv("SERVICE_AUTH_JWKS_URL"),
			Issuer:   os.Getenv("SERVICE_AUTH_ISSUER"),
			Audience: os.Getenv("SERVICE_AUTH_AUDIENCE"),
		},
	}

	for _, durationEnv := range []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout},
	} {
		if raw := strings.TrimSpace(os.Getenv(durationEnv.key)); raw != "" {
			parsed, err := parseDuration(raw)
			if err != nil {
				return Config{}, fmt.Errorf("config: %s: %w", durationEnv.key, err)
			}
			*durationEnv.target = parsed
		}
	}

	if cfg.Firestore.ProjectID == "" && cfg.Firestore.EmulatorHost == "" {
		return Config{}, errors.New("config: FIRESTORE_PROJECT_ID is required")
	}

	return cfg, nil
}

// parseDuration accepts Go duration strings and bare seconds.
func parseDuration(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", parsed)
	}
	return parsed, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// loadEnvFile seeds unset environment variables from a KEY=VALUE file.
// A missing file is not an error.
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("config: set %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
