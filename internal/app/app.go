package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/blogapi/internal/blog"
	"github.com/hitoshi/blogapi/internal/config"
	"github.com/hitoshi/blogapi/internal/content"
	"github.com/hitoshi/blogapi/internal/handler"
	"github.com/hitoshi/blogapi/internal/logger"
	"github.com/hitoshi/blogapi/internal/metrics"
	"github.com/hitoshi/blogapi/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数（と.envファイル）からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再セットアップ
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.SetupDefault(w, level), nil
}

// newStore は設定からコンテンツストアを構築する。
func newStore(cfg *config.Config, log *slog.Logger, recorder content.Recorder) *content.Store {
	opts := []content.Option{
		content.WithExtension(cfg.ContentExtension),
		content.WithLogger(log),
	}
	if cfg.ContentCache {
		opts = append(opts, content.WithCache())
	}
	if recorder != nil {
		opts = append(opts, content.WithRecorder(recorder))
	}
	return content.NewStore(cfg.ContentDir, opts...)
}

// runServe はAPIサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 2. コンテンツとサービス
	store := newStore(cfg, log, collector)
	if err := store.Ping(ctx); err != nil {
		log.Warn("content directory is not readable; serving empty listings",
			slog.String("dir", cfg.ContentDir),
			slog.String("error", err.Error()),
		)
	}
	repo := content.NewRepository(store,
		content.WithConcurrency(cfg.ListConcurrency),
		content.WithRepositoryRecorder(collector),
		content.WithRepositoryLogger(log),
	)
	svc := blog.NewService(repo, blog.Limits{
		DefaultPageSize:    cfg.DefaultPageSize,
		MaxPageSize:        cfg.MaxPageSize,
		RecentDefaultLimit: cfg.RecentDefaultLimit,
		RecentMaxLimit:     cfg.RecentMaxLimit,
	}, cfg.BaseURL, log)

	// 3. ポートの確保
	ln, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.ServerPort, err)
	}

	// 4. ファイル監視（任意）
	var watcher *content.Watcher
	if cfg.ContentWatch && cfg.ContentCache {
		w, err := content.NewWatcher(store, log)
		if err != nil {
			log.Warn("content watcher disabled", slog.String("error", err.Error()))
		} else {
			watcher = w
			go watcher.Run(ctx)
		}
	}

	// 5. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitPerMinute))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		MetricsRecorder:   collector,
		MetricsGatherer:   registry,
		BlogService:       handler.NewBlogServiceAdapter(svc),
		HealthChecker:     store,
		Logger:            log,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
	case listenErr = <-serveErr:
	}
	log.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if watcher != nil {
		if err := watcher.Close(shutdownCtx); err != nil {
			log.Warn("failed to close content watcher", slog.String("error", err.Error()))
		}
	}

	if listenErr != nil {
		return fmt.Errorf("server listen error: %w", listenErr)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// checkResult は1記事分の検証結果。
type checkResult struct {
	Slug string
	Err  error
}

// runCheck は全コンテンツファイルを読み込み、結果をoutに書き出す。
// 1件でも読み込みに失敗した場合はエラーを返す。
func runCheck(ctx context.Context, store *content.Store, out io.Writer) error {
	ids, err := store.ListIdentifiers(ctx)
	if err != nil {
		return err
	}

	var results []checkResult
	for _, id := range ids {
		entry, err := store.LoadEntry(ctx, id)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			results = append(results, checkResult{Slug: id, Err: err})
			continue
		}
		if entry == nil {
			continue
		}
		results = append(results, checkResult{Slug: id})
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", r.Slug, r.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", r.Slug)
	}
	fmt.Fprintf(out, "checked %d entries in %s, %d failed\n", len(results), store.Dir(), failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d content entries failed to load", failed, len(results))
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// healthcheckPort はヘルスチェック対象のポートを返す。
func healthcheckPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}
