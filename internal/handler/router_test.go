package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/blogapi/internal/metrics"
	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
)

func newTestRouter(t *testing.T, svc BlogServiceInterface) http.Handler {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		CORSAllowedOrigin: "*",
		RateLimiter:       rl,
		BlogService:       svc,
		HealthChecker:     &mockHealthChecker{},
		Logger:            discardLogger(),
	})
}

// TestNewRouter_Routes は各エンドポイントが対応するハンドラーに到達することを検証する。
func TestNewRouter_Routes(t *testing.T) {
	var called string
	svc := &mockBlogService{
		listPostsFn: func(ctx context.Context, page, pageSize int) (*postListResponse, error) {
			called = "ListPosts"
			return &postListResponse{Posts: []postSummaryResponse{}}, nil
		},
		recentPostsFn: func(ctx context.Context, limit int) ([]postSummaryResponse, error) {
			called = "RecentPosts"
			return []postSummaryResponse{}, nil
		},
		getPostFn: func(ctx context.Context, slug string) (*postDetailResponse, error) {
			called = "GetPost:" + slug
			return &postDetailResponse{Slug: slug}, nil
		},
		postsByTagFn: func(ctx context.Context, tag string, page, pageSize int) (*tagPostListResponse, error) {
			called = "PostsByTag:" + tag
			return &tagPostListResponse{Tag: tag, Posts: []postSummaryResponse{}}, nil
		},
		tagsFn: func(ctx context.Context) ([]model.TagCount, error) {
			called = "Tags"
			return nil, nil
		},
		statsFn: func(ctx context.Context) (*model.BlogStats, error) {
			called = "Stats"
			return &model.BlogStats{}, nil
		},
	}
	router := newTestRouter(t, svc)

	tests := []struct {
		path       string
		wantCalled string
	}{
		{"/api/v1/posts", "ListPosts"},
		{"/api/v1/posts/recent", "RecentPosts"},
		{"/api/v1/posts/hello-world", "GetPost:hello-world"},
		{"/api/v1/posts/tag/go", "PostsByTag:go"},
		{"/api/v1/posts/tag/web%20dev", "PostsByTag:web dev"},
		{"/api/v1/tags", "Tags"},
		{"/api/v1/stats", "Stats"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			called = ""
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, http.StatusOK)
			}
			if called != tt.wantCalled {
				t.Errorf("GET %s called %q, want %q", tt.path, called, tt.wantCalled)
			}
		})
	}
}

func TestNewRouter_Index(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{})

	for _, path := range []string{"/api/v1", "/api/v1/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}

// TestNewRouter_CacheHeaders はルートごとのキャッシュ有効期間を検証する。
func TestNewRouter_CacheHeaders(t *testing.T) {
	svc := &mockBlogService{
		getPostFn: func(ctx context.Context, slug string) (*postDetailResponse, error) {
			return &postDetailResponse{Slug: slug}, nil
		},
		postsByTagFn: func(ctx context.Context, tag string, page, pageSize int) (*tagPostListResponse, error) {
			return &tagPostListResponse{Tag: tag, Posts: []postSummaryResponse{}}, nil
		},
	}
	router := newTestRouter(t, svc)

	tests := []struct {
		path   string
		maxAge int
	}{
		{"/api/v1", 3600},
		{"/api/v1/posts", 3600},
		{"/api/v1/posts/recent", 1800},
		{"/api/v1/posts/some-post", 86400},
		{"/api/v1/posts/tag/go", 3600},
		{"/api/v1/tags", 7200},
		{"/api/v1/stats", 7200},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

		want := middleware.CacheControlValue(tt.maxAge)
		if got := w.Header().Get("Cache-Control"); got != want {
			t.Errorf("GET %s Cache-Control = %q, want %q", tt.path, got, want)
		}
	}
}

func TestNewRouter_ErrorsAreNotCached(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/posts/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Errorf("Cache-Control = %q, want empty", got)
	}
}

func TestNewRouter_NotFound(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{})

	for _, path := range []string{"/nope", "/api/v2/posts", "/api/v1/unknown"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusNotFound)
			continue
		}
		body := parseError(t, w)
		if body.Error.Message != "Route "+path+" not found" {
			t.Errorf("GET %s error.message = %q", path, body.Error.Message)
		}
	}
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tags", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	body := parseError(t, w)
	if body.Error.Message != "Method POST not allowed" {
		t.Errorf("error.message = %q", body.Error.Message)
	}
}

// TestNewRouter_Preflight はOPTIONSリクエストがハンドラーに到達せず204を返すことを検証する。
func TestNewRouter_Preflight(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{
		listPostsFn: func(ctx context.Context, page, pageSize int) (*postListResponse, error) {
			t.Error("service should not be called for preflight")
			return nil, nil
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/posts", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}

// TestNewRouter_MiddlewareChain は全レスポンスに共通ヘッダーが付与されることを検証する。
func TestNewRouter_MiddlewareChain(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{})

	for _, path := range []string{"/api/v1/posts", "/api/v1/posts/missing", "/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Header().Get(middleware.RequestIDHeader) == "" {
			t.Errorf("GET %s: missing %s", path, middleware.RequestIDHeader)
		}
		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("GET %s: missing X-Content-Type-Options", path)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("GET %s: missing Access-Control-Allow-Origin", path)
		}
	}
}

func TestNewRouter_RecoversFromPanic(t *testing.T) {
	router := newTestRouter(t, &mockBlogService{
		statsFn: func(ctx context.Context) (*model.BlogStats, error) {
			panic("boom")
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := parseError(t, w)
	if body.Error.Message != "Internal server error" {
		t.Errorf("error.message = %q", body.Error.Message)
	}
}

// TestNewRouter_RateLimit はブログAPIにのみレート制限が適用されることを検証する。
func TestNewRouter_RateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:            1,
		Burst:           1,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		RateLimiter: rl,
		BlogService: &mockBlogService{},
		Logger:      discardLogger(),
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}

	// ヘルスチェックは制限されない
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	router := NewRouter(&RouterDeps{
		BlogService:     &mockBlogService{},
		MetricsRecorder: collector,
		MetricsGatherer: reg,
		Logger:          discardLogger(),
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/posts/missing", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", w.Code, http.StatusOK)
	}

	body, _ := io.ReadAll(w.Body)
	want := `blogapi_http_requests_total{method="GET",route="/api/v1/posts/{slug}",status="404"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output should contain %q\n%s", want, body)
	}
}
