package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "https://library.example.com/api")
}

func TestLoad_RequiredVarSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APIBaseURL != "https://library.example.com/api" {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "https://library.example.com/api")
	}
}

func TestLoad_MissingRequiredVar_ReturnsError(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing API_BASE_URL, got nil")
	}
	if !strings.Contains(err.Error(), "API_BASE_URL") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestLoad_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://library.example.com/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APIBaseURL != "https://library.example.com/api" {
		t.Errorf("APIBaseURL = %q, want trailing slash removed", cfg.APIBaseURL)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APITimeout != 20*time.Second {
		t.Errorf("APITimeout = %v, want %v", cfg.APITimeout, 20*time.Second)
	}
	if cfg.AppName != "Tosho" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "Tosho")
	}
	if cfg.AppVersion != "1.0.0" {
		t.Errorf("AppVersion = %q, want %q", cfg.AppVersion, "1.0.0")
	}
	if cfg.StoragePath == "" {
		t.Error("StoragePath should have a default value")
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want %v", cfg.SearchDebounce, 300*time.Millisecond)
	}
	if cfg.ToastDuration != 5*time.Second {
		t.Errorf("ToastDuration = %v, want %v", cfg.ToastDuration, 5*time.Second)
	}
	if cfg.RateLimitRPS != 10 {
		t.Errorf("RateLimitRPS = %v, want %v", cfg.RateLimitRPS, 10.0)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("RateLimitBurst = %d, want %d", cfg.RateLimitBurst, 20)
	}
	if cfg.CoverTimeout != 10*time.Second {
		t.Errorf("CoverTimeout = %v, want %v", cfg.CoverTimeout, 10*time.Second)
	}
	if cfg.CoverMaxSize != 5242880 {
		t.Errorf("CoverMaxSize = %d, want %d", cfg.CoverMaxSize, 5242880)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_OverrideValues(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("SEARCH_DEBOUNCE", "150ms")
	t.Setenv("TOAST_DURATION", "2s")
	t.Setenv("RATE_LIMIT_RPS", "3.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APITimeout != 5*time.Second {
		t.Errorf("APITimeout = %v, want %v", cfg.APITimeout, 5*time.Second)
	}
	if cfg.SearchDebounce != 150*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want %v", cfg.SearchDebounce, 150*time.Millisecond)
	}
	if cfg.ToastDuration != 2*time.Second {
		t.Errorf("ToastDuration = %v, want %v", cfg.ToastDuration, 2*time.Second)
	}
	if cfg.RateLimitRPS != 3.5 {
		t.Errorf("RateLimitRPS = %v, want %v", cfg.RateLimitRPS, 3.5)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_InvalidDuration_FallsBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("API_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APITimeout != 20*time.Second {
		t.Errorf("APITimeout = %v, want default %v", cfg.APITimeout, 20*time.Second)
	}
}
