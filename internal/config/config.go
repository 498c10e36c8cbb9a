package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Content
	ContentDir       string
	ContentExtension string
	ContentCache     bool
	ContentWatch     bool
	ListConcurrency  int

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string

	// Pagination
	DefaultPageSize    int
	MaxPageSize        int
	RecentDefaultLimit int
	RecentMaxLimit     int

	// Rate Limit（クライアントIPごとの1分あたりのリクエスト数）
	RateLimitPerMinute int

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルがあれば先に読み込む（既存の環境変数は上書きしない）。
// 数値が不正な場合はデフォルト値を使い、設定値の組み合わせが矛盾する場合はエラーを返す。
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile は指定した.envファイルを読み込んでからConfigを構築する。
// ファイルが存在しない場合は環境変数のみを使う。
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		ContentDir:         getEnvString("CONTENT_DIR", "content/blog"),
		ContentExtension:   getEnvString("CONTENT_EXTENSION", ".mdx"),
		ContentCache:       getEnvBool("CONTENT_CACHE", true),
		ContentWatch:       getEnvBool("CONTENT_WATCH", false),
		ListConcurrency:    getEnvInt("LIST_CONCURRENCY", 8),
		ServerPort:         getEnvString("SERVER_PORT", "8080"),
		BaseURL:            strings.TrimSuffix(getEnvString("BASE_URL", "http://localhost:8080"), "/"),
		CORSAllowedOrigin:  getEnvString("CORS_ALLOWED_ORIGIN", "*"),
		DefaultPageSize:    getEnvInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:        getEnvInt("MAX_PAGE_SIZE", 100),
		RecentDefaultLimit: getEnvInt("RECENT_DEFAULT_LIMIT", 5),
		RecentMaxLimit:     getEnvInt("RECENT_MAX_LIMIT", 50),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnvString("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は設定値の範囲と組み合わせを検証する。
func (c *Config) validate() error {
	var problems []string

	if c.DefaultPageSize < 1 {
		problems = append(problems, "DEFAULT_PAGE_SIZE must be positive")
	}
	if c.MaxPageSize < 1 {
		problems = append(problems, "MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPageSize > c.MaxPageSize {
		problems = append(problems, fmt.Sprintf("DEFAULT_PAGE_SIZE (%d) exceeds MAX_PAGE_SIZE (%d)", c.DefaultPageSize, c.MaxPageSize))
	}
	if c.RecentDefaultLimit < 1 {
		problems = append(problems, "RECENT_DEFAULT_LIMIT must be positive")
	}
	if c.RecentDefaultLimit > c.RecentMaxLimit {
		problems = append(problems, fmt.Sprintf("RECENT_DEFAULT_LIMIT (%d) exceeds RECENT_MAX_LIMIT (%d)", c.RecentDefaultLimit, c.RecentMaxLimit))
	}
	if c.RateLimitPerMinute < 1 {
		problems = append(problems, "RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ListConcurrency < 1 {
		problems = append(problems, "LIST_CONCURRENCY must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
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

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
