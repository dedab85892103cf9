// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	GitHubToken   string
	GitLabToken   string
	GitLabBaseURL string
	// SecretKey is the AES-256 key for stored credentials. Nil when unset.
	SecretKey  []byte
	UserHeader string
	SignInURL  string
	LogLevel   slog.Level
}

// Load reads configuration from environment variables and returns a validated Config.
// Provider tokens (SHORTEST_GITHUB_TOKEN, SHORTEST_GITLAB_TOKEN) are optional; a
// provider without a token is still queried anonymously.
// Optional variables with defaults: SHORTEST_LISTEN_ADDR (127.0.0.1:8080),
// SHORTEST_DB_PATH (shortest.db), SHORTEST_GITLAB_BASE_URL (https://gitlab.com),
// SHORTEST_USER_HEADER (X-Forwarded-User), SHORTEST_SIGN_IN_URL (/sign-in),
// SHORTEST_LOG_LEVEL (info).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("SHORTEST_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "shortest.db"
	if v, ok := os.LookupEnv("SHORTEST_DB_PATH"); ok {
		dbPath = v
	}

	gitlabBaseURL := "https://gitlab.com"
	if v, ok := os.LookupEnv("SHORTEST_GITLAB_BASE_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("SHORTEST_GITLAB_BASE_URL must be an absolute URL, got %q", v)
		}
		gitlabBaseURL = strings.TrimRight(v, "/")
	}

	var secretKey []byte
	if v := os.Getenv("SHORTEST_SECRET_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("SHORTEST_SECRET_KEY must be hex encoded: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("SHORTEST_SECRET_KEY must be 64 hex chars (32 bytes), got %d bytes", len(key))
		}
		secretKey = key
	}

	userHeader := "X-Forwarded-User"
	if v := strings.TrimSpace(os.Getenv("SHORTEST_USER_HEADER")); v != "" {
		userHeader = v
	}

	signInURL := "/sign-in"
	if v := os.Getenv("SHORTEST_SIGN_IN_URL"); v != "" {
		signInURL = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("SHORTEST_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("SHORTEST_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
		GitHubToken:   os.Getenv("SHORTEST_GITHUB_TOKEN"),
		GitLabToken:   os.Getenv("SHORTEST_GITLAB_TOKEN"),
		GitLabBaseURL: gitlabBaseURL,
		SecretKey:     secretKey,
		UserHeader:    userHeader,
		SignInURL:     signInURL,
		LogLevel:      logLevel,
	}, nil
}
