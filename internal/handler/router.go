package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/blogapi/internal/metrics"
	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
)

// ルートごとのキャッシュ有効期間（秒）。
const (
	indexMaxAge    = 3600
	postsMaxAge    = 3600
	recentMaxAge   = 1800
	postMaxAge     = 86400
	tagPostsMaxAge = 3600
	tagsMaxAge     = 7200
	statsMaxAge    = 7200
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPMetricsRecorder
	MetricsGatherer   prometheus.Gatherer

	// ブログ
	BlogService BlogServiceInterface

	// ヘルスチェック
	HealthChecker HealthChecker

	// リクエストログの出力先。nilの場合はslog.Default()を使う。
	Logger *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS → RateLimit
//
// /health と /metrics はレート制限の対象外とする。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteErrorResponse(w, model.NewRouteNotFoundError(req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteErrorResponse(w, model.NewMethodNotAllowedError(req.Method))
	})

	healthHandler := NewHealthHandler(deps.HealthChecker)
	blogHandler := NewBlogHandler(deps.BlogService)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- ブログAPI ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.With(middleware.NewCacheControlMiddleware(indexMaxAge)).Get("/", blogHandler.Index)

			r.Route("/posts", func(r chi.Router) {
				r.With(middleware.NewCacheControlMiddleware(postsMaxAge)).Get("/", blogHandler.ListPosts)
				// 固定パスは {slug} より先に登録する
				r.With(middleware.NewCacheControlMiddleware(recentMaxAge)).Get("/recent", blogHandler.RecentPosts)
				r.With(middleware.NewCacheControlMiddleware(tagPostsMaxAge)).Get("/tag/{tag}", blogHandler.PostsByTag)
				r.With(middleware.NewCacheControlMiddleware(postMaxAge)).Get("/{slug}", blogHandler.GetPost)
			})

			r.With(middleware.NewCacheControlMiddleware(tagsMaxAge)).Get("/tags", blogHandler.Tags)
			r.With(middleware.NewCacheControlMiddleware(statsMaxAge)).Get("/stats", blogHandler.Stats)
		})
	})

	return r
}
