// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// API
	APIBaseURL string
	APITimeout time.Duration

	// App
	AppName    string
	AppVersion string

	// Storage
	StoragePath string

	// Catalog
	SearchDebounce time.Duration

	// Toast
	ToastDuration time.Duration

	// Rate Limit（クライアント側の送信レート）
	RateLimitRPS   float64
	RateLimitBurst int

	// Cover
	CoverTimeout time.Duration
	CoverMaxSize int64

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// ベースURLの末尾スラッシュはパス結合時の二重スラッシュ防止のため除去する
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	// Optional fields with defaults
	cfg.APITimeout = getEnvDuration("API_TIMEOUT", 20*time.Second)
	cfg.AppName = getEnvString("APP_NAME", "Tosho")
	cfg.AppVersion = getEnvString("APP_VERSION", "1.0.0")
	cfg.StoragePath = getEnvString("STORAGE_PATH", defaultStoragePath())
	cfg.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond)
	cfg.ToastDuration = getEnvDuration("TOAST_DURATION", 5*time.Second)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 20)
	cfg.CoverTimeout = getEnvDuration("COVER_TIMEOUT", 10*time.Second)
	cfg.CoverMaxSize = getEnvInt64("COVER_MAX_SIZE", 5242880)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

// defaultStoragePath は永続ストレージファイルの既定パスを返す。
// ホームディレクトリが取得できない場合はカレントディレクトリ配下にフォールバックする。
func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tosho", "state.json")
	}
	return filepath.Join(home, ".tosho", "state.json")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
