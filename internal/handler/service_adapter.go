package handler

import (
	"context"

	"github.com/hitoshi/blogapi/internal/blog"
	"github.com/hitoshi/blogapi/internal/model"
)

// BlogServiceAdapter は blog.Service を BlogServiceInterface に適合させるアダプタ。
type BlogServiceAdapter struct {
	svc *blog.Service
}

// NewBlogServiceAdapter はBlogServiceAdapterを生成する。
func NewBlogServiceAdapter(svc *blog.Service) *BlogServiceAdapter {
	return &BlogServiceAdapter{svc: svc}
}

// Index はAPIの自己記述ドキュメントを返す。
func (a *BlogServiceAdapter) Index() blog.IndexDocument {
	return a.svc.Index()
}

// ListPosts は記事一覧をhandlerレスポンス型で返す。
func (a *BlogServiceAdapter) ListPosts(ctx context.Context, page, pageSize int) (*postListResponse, error) {
	result, err := a.svc.ListPosts(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &postListResponse{
		Posts:      toPostSummaryResponses(result.Posts),
		Pagination: result.Pagination,
	}, nil
}

// RecentPosts は最新記事をhandlerレスポンス型で返す。
func (a *BlogServiceAdapter) RecentPosts(ctx context.Context, limit int) ([]postSummaryResponse, error) {
	posts, err := a.svc.RecentPosts(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toPostSummaryResponses(posts), nil
}

// GetPost は記事詳細をhandlerレスポンス型で返す。
func (a *BlogServiceAdapter) GetPost(ctx context.Context, slug string) (*postDetailResponse, error) {
	post, err := a.svc.GetPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &postDetailResponse{
		Slug:        post.Entry.Slug,
		Frontmatter: post.Entry.Metadata,
		Content: postContentResponse{
			MDX:         post.Entry.Body,
			ReadingTime: post.ReadingTime,
		},
	}, nil
}

// PostsByTag はタグ別記事一覧をhandlerレスポンス型で返す。
func (a *BlogServiceAdapter) PostsByTag(ctx context.Context, tag string, page, pageSize int) (*tagPostListResponse, error) {
	result, err := a.svc.PostsByTag(ctx, tag, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &tagPostListResponse{
		Tag:        result.Tag,
		Posts:      toPostSummaryResponses(result.Posts),
		Pagination: result.Pagination,
	}, nil
}

// Tags は全タグを記事数とともに返す。
func (a *BlogServiceAdapter) Tags(ctx context.Context) ([]model.TagCount, error) {
	return a.svc.Tags(ctx)
}

// Stats はブログ全体の統計を返す。
func (a *BlogServiceAdapter) Stats(ctx context.Context) (*model.BlogStats, error) {
	return a.svc.Stats(ctx)
}

// toPostSummaryResponses はドメインのSummaryをhandlerのレスポンス型に変換する。
func toPostSummaryResponses(posts []blog.Summary) []postSummaryResponse {
	results := make([]postSummaryResponse, len(posts))
	for i, p := range posts {
		results[i] = postSummaryResponse{
			Slug:        p.Meta.Slug,
			Frontmatter: p.Meta.Metadata,
			Excerpt:     p.Excerpt,
			ReadingTime: p.ReadingTime,
		}
	}
	return results
}

// --- compile-time interface checks ---

var _ BlogServiceInterface = (*BlogServiceAdapter)(nil)
