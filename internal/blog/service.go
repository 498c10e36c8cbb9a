// Package blog は記事一覧・タグ・統計などブログAPIのドメインロジックを提供する。
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hitoshi/blogapi/internal/api"
	"github.com/hitoshi/blogapi/internal/content"
	"github.com/hitoshi/blogapi/internal/model"
)

var _ Repository = (*content.Repository)(nil)

// topTagsLimit は統計に含める上位タグの数。
const topTagsLimit = 10

// Repository は記事データへの読み取り専用アクセスのインターフェース。
type Repository interface {
	ListAll(ctx context.Context) ([]model.EntryMeta, error)
	GetByIdentifier(ctx context.Context, id string) (*model.Entry, error)
	ListAllTags(ctx context.Context) ([]string, error)
	TagCounts(ctx context.Context) ([]model.TagCount, error)
	ListByTag(ctx context.Context, tag string) ([]model.EntryMeta, error)
	ListRecent(ctx context.Context, n int) ([]model.EntryMeta, error)
}

// Summary は一覧表示用に抜粋と読了時間を付加した記事情報。
type Summary struct {
	Meta        model.EntryMeta
	Excerpt     string
	ReadingTime int
}

// PostPage は記事一覧の1ページ分。
type PostPage struct {
	Posts      []Summary
	Pagination api.Pagination
}

// TagPage はタグ別記事一覧の1ページ分。Tagは解決後の実際のタグ名。
type TagPage struct {
	Tag string
	PostPage
}

// Post は本文と読了時間を含む記事。
type Post struct {
	Entry       *model.Entry
	ReadingTime int
}

// Limits はページネーションと最新記事件数の上限設定。
type Limits struct {
	DefaultPageSize    int
	MaxPageSize        int
	RecentDefaultLimit int
	RecentMaxLimit     int
}

// DefaultLimits はデフォルトの上限設定を返す。
func DefaultLimits() Limits {
	return Limits{
		DefaultPageSize:    api.DefaultPageSize,
		MaxPageSize:        api.MaxPageSize,
		RecentDefaultLimit: 5,
		RecentMaxLimit:     50,
	}
}

// Service はブログAPIのサービス層。
type Service struct {
	repo    Repository
	limits  Limits
	baseURL string
	logger  *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo Repository, limits Limits, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		limits:  limits,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Limits はサービスの上限設定を返す。
func (s *Service) Limits() Limits {
	return s.limits
}

// ListPosts は全記事の指定ページを返す。
// 記事があり、ページが総ページ数を超える場合は400のAPIErrorを返す。
func (s *Service) ListPosts(ctx context.Context, page, pageSize int) (*PostPage, error) {
	page, pageSize = api.ClampPagination(page, pageSize, s.limits.DefaultPageSize, s.limits.MaxPageSize)

	metas, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}

	w, err := api.WindowOf(metas, page, pageSize)
	if err != nil {
		var rangeErr *api.PageOutOfRangeError
		if errors.As(err, &rangeErr) {
			return nil, model.NewPageOutOfRangeError(rangeErr.Page, rangeErr.TotalPages)
		}
		return nil, err
	}

	posts, err := s.summarize(ctx, w.Items)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Pagination: w.Pagination}, nil
}

// RecentPosts は新しい順に最大limit件の記事を返す。
// limitが範囲外の場合はデフォルト件数を使う。
func (s *Service) RecentPosts(ctx context.Context, limit int) ([]Summary, error) {
	_, limit = api.ClampPagination(1, limit, s.limits.RecentDefaultLimit, s.limits.RecentMaxLimit)

	metas, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("最新記事の取得に失敗しました: %w", err)
	}
	return s.summarize(ctx, metas)
}

// GetPost は記事を本文付きで返す。存在しない場合は404のAPIErrorを返す。
func (s *Service) GetPost(ctx context.Context, slug string) (*Post, error) {
	entry, err := s.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if entry == nil {
		return nil, model.NewPostNotFoundError(slug)
	}
	return &Post{
		Entry:       entry,
		ReadingTime: api.ReadingTimeMinutes(entry.Body),
	}, nil
}

// PostsByTag はURLのタグパラメータに一致する記事の指定ページを返す。
// タグ名は大文字小文字を無視し、空白をハイフンに置き換えて照合する。
// 一致するタグがなければデコードしたパラメータをそのまま使う。
func (s *Service) PostsByTag(ctx context.Context, tagParam string, page, pageSize int) (*TagPage, error) {
	page, pageSize = api.ClampPagination(page, pageSize, s.limits.DefaultPageSize, s.limits.MaxPageSize)

	allTags, err := s.repo.ListAllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	tag := ResolveTag(allTags, tagParam)

	metas, err := s.repo.ListByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("タグ別記事一覧の取得に失敗しました: %w", err)
	}
	if len(metas) == 0 {
		for _, t := range allTags {
			if strings.EqualFold(t, tag) {
				return nil, model.NewNoPostsForTagError(tag)
			}
		}
		return nil, model.NewTagNotFoundError(tag)
	}

	w, err := api.WindowOf(metas, page, pageSize)
	if err != nil {
		var rangeErr *api.PageOutOfRangeError
		if errors.As(err, &rangeErr) {
			return nil, model.NewTagPageOutOfRangeError(tag, rangeErr.Page, rangeErr.TotalPages)
		}
		return nil, err
	}

	posts, err := s.summarize(ctx, w.Items)
	if err != nil {
		return nil, err
	}
	return &TagPage{
		Tag:      tag,
		PostPage: PostPage{Posts: posts, Pagination: w.Pagination},
	}, nil
}

// Tags は全タグを名前順に、各タグを含む記事数とともに返す。
func (s *Service) Tags(ctx context.Context) ([]model.TagCount, error) {
	counts, err := s.repo.TagCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Name < counts[j].Name
	})
	return counts, nil
}

// Stats はブログ全体の統計を返す。
func (s *Service) Stats(ctx context.Context) (*model.BlogStats, error) {
	metas, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("統計の取得に失敗しました: %w", err)
	}

	totalMinutes := 0
	postsByYear := make(map[string]int)
	for _, m := range metas {
		entry, err := s.repo.GetByIdentifier(ctx, m.Slug)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("skipping entry in stats",
				slog.String("slug", m.Slug),
				slog.String("error", err.Error()),
			)
			continue
		}
		if entry == nil {
			continue
		}
		totalMinutes += api.ReadingTimeMinutes(entry.Body)
		postsByYear[strconv.Itoa(m.PublishedAt.Year())]++
	}

	counts := content.CountTags(metas)
	top := counts[:min(topTagsLimit, len(counts))]

	stats := &model.BlogStats{
		Blog: model.BlogTotals{
			TotalPosts: len(metas),
			TotalTags:  len(counts),
		},
		Reading: model.ReadingTotals{
			TotalReadingMinutes: totalMinutes,
		},
		Distribution: model.Distribution{PostsByYear: postsByYear},
		Tags: model.TagStats{
			Total:   len(counts),
			TopTags: top,
		},
	}
	if len(metas) > 0 {
		latest := metas[0].Metadata.Date
		earliest := metas[len(metas)-1].Metadata.Date
		stats.Blog.LatestPost = &latest
		stats.Blog.EarliestPost = &earliest
		stats.Reading.AverageReadingTime = int(math.Floor(float64(totalMinutes)/float64(len(metas)) + 0.5))
	}
	return stats, nil
}

// summarize は各記事に抜粋と読了時間を付加する。
// 一覧取得後に読み込めなくなった記事は読了時間0、抜粋は説明文とする。
func (s *Service) summarize(ctx context.Context, metas []model.EntryMeta) ([]Summary, error) {
	out := make([]Summary, len(metas))
	for i, m := range metas {
		out[i] = Summary{Meta: m, Excerpt: m.Metadata.Description}

		entry, err := s.repo.GetByIdentifier(ctx, m.Slug)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("entry could not be reloaded",
				slog.String("slug", m.Slug),
				slog.String("error", err.Error()),
			)
			continue
		}
		if entry == nil {
			continue
		}
		out[i].Excerpt = api.Excerpt(entry.Body, api.DefaultExcerptLength)
		out[i].ReadingTime = api.ReadingTimeMinutes(entry.Body)
	}
	return out, nil
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// TagSlug はタグ名をURL用の形式（小文字、空白はハイフン）に変換する。
func TagSlug(tag string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(tag), "-")
}

// ResolveTag はURLのタグパラメータを既存のタグ名に解決する。
// 一致するタグがない場合はパーセントデコードしたパラメータを返す。
func ResolveTag(allTags []string, tagParam string) string {
	decoded, err := url.PathUnescape(tagParam)
	if err != nil {
		decoded = tagParam
	}

	key := strings.ToLower(tagParam)
	decodedKey := TagSlug(decoded)
	for _, t := range allTags {
		slug := TagSlug(t)
		if slug == key || slug == decodedKey {
			return t
		}
	}
	return decoded
}
