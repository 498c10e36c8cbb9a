package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogapi/internal/api"
	"github.com/hitoshi/blogapi/internal/blog"
	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
)

// BlogServiceInterface はブログハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// Index はAPIの自己記述ドキュメントを返す。
	Index() blog.IndexDocument
	// ListPosts は全記事の指定ページを返す。
	ListPosts(ctx context.Context, page, pageSize int) (*postListResponse, error)
	// RecentPosts は最新記事を最大limit件返す。
	RecentPosts(ctx context.Context, limit int) ([]postSummaryResponse, error)
	// GetPost は本文付きの記事を返す。
	GetPost(ctx context.Context, slug string) (*postDetailResponse, error)
	// PostsByTag はタグ別記事一覧の指定ページを返す。
	PostsByTag(ctx context.Context, tag string, page, pageSize int) (*tagPostListResponse, error)
	// Tags は全タグを記事数とともに名前順で返す。
	Tags(ctx context.Context) ([]model.TagCount, error)
	// Stats はブログ全体の統計を返す。
	Stats(ctx context.Context) (*model.BlogStats, error)
}

// BlogHandler はブログ記事APIのHTTPハンドラー。
type BlogHandler struct {
	service BlogServiceInterface
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface) *BlogHandler {
	return &BlogHandler{service: service}
}

// postSummaryResponse は一覧の1記事分のAPIレスポンス。
type postSummaryResponse struct {
	Slug        string         `json:"slug"`
	Frontmatter model.Metadata `json:"frontmatter"`
	Excerpt     string         `json:"excerpt"`
	ReadingTime int            `json:"readingTime"`
}

// postListResponse は記事一覧のAPIレスポンス。
type postListResponse struct {
	Posts      []postSummaryResponse `json:"posts"`
	Pagination api.Pagination        `json:"pagination"`
}

// tagPostListResponse はタグ別記事一覧のAPIレスポンス。
type tagPostListResponse struct {
	Tag        string                `json:"tag"`
	Posts      []postSummaryResponse `json:"posts"`
	Pagination api.Pagination        `json:"pagination"`
}

// postContentResponse は記事本文のAPIレスポンス。
type postContentResponse struct {
	MDX         string `json:"mdx"`
	ReadingTime int    `json:"readingTime"`
}

// postDetailResponse は記事詳細のAPIレスポンス。
type postDetailResponse struct {
	Slug        string              `json:"slug"`
	Frontmatter model.Metadata      `json:"frontmatter"`
	Content     postContentResponse `json:"content"`
}

// tagListResponse はタグ一覧のAPIレスポンス。Tagsは[]stringまたは[]model.TagCount。
type tagListResponse struct {
	Tags  any `json:"tags"`
	Total int `json:"total"`
}

// Index はAPIの説明ドキュメントを返す。
// GET /api/v1
func (h *BlogHandler) Index(w http.ResponseWriter, r *http.Request) {
	middleware.WriteSuccessResponse(w, h.service.Index(), "")
}

// ListPosts は記事一覧を返す。
// GET /api/v1/posts?page=1&pageSize=10
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	pageSize := pageSizeParam(r)

	result, err := h.service.ListPosts(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccessResponse(w, result,
		fmt.Sprintf("Retrieved %d posts from page %d", len(result.Posts), result.Pagination.CurrentPage))
}

// RecentPosts は最新記事を返す。
// GET /api/v1/posts/recent?limit=5
func (h *BlogHandler) RecentPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.RecentPosts(r.Context(), queryInt(r, "limit"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccessResponse(w, posts,
		fmt.Sprintf("Retrieved %d recent posts", len(posts)))
}

// GetPost は記事詳細を返す。
// GET /api/v1/posts/{slug}
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.service.GetPost(r.Context(), slug)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccessResponse(w, post, "Retrieved full post: "+post.Frontmatter.Title)
}

// PostsByTag はタグ別の記事一覧を返す。
// GET /api/v1/posts/tag/{tag}?page=1&pageSize=10
func (h *BlogHandler) PostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	page := queryInt(r, "page")
	pageSize := pageSizeParam(r)

	result, err := h.service.PostsByTag(r.Context(), tag, page, pageSize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccessResponse(w, result,
		fmt.Sprintf("Retrieved %d posts with tag \"%s\" from page %d",
			len(result.Posts), result.Tag, result.Pagination.CurrentPage))
}

// Tags はタグ一覧を返す。count=trueの場合は各タグの記事数を含める。
// GET /api/v1/tags?count=true
func (h *BlogHandler) Tags(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Tags(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var tags any
	if r.URL.Query().Get("count") == "true" {
		tags = counts
	} else {
		names := make([]string, len(counts))
		for i, c := range counts {
			names[i] = c.Name
		}
		tags = names
	}

	middleware.WriteSuccessResponse(w, tagListResponse{Tags: tags, Total: len(counts)},
		fmt.Sprintf("Retrieved %d tags", len(counts)))
}

// Stats はブログ全体の統計を返す。
// GET /api/v1/stats
func (h *BlogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccessResponse(w, stats, "")
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// queryInt はクエリパラメータを整数として返す。未指定や不正な値の場合は0を返す。
// 0はサービス層でデフォルト値に置き換えられる。
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return n
}

// pageSizeParam はpageSizeを返す。未指定の場合はlimitを別名として使う。
func pageSizeParam(r *http.Request) int {
	if r.URL.Query().Has("pageSize") {
		return queryInt(r, "pageSize")
	}
	return queryInt(r, "limit")
}
