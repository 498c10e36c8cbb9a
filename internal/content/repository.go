package content

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/blogapi/internal/model"
)

// defaultConcurrency は一覧構築時に並列で読み込むファイル数のデフォルト値。
const defaultConcurrency = 8

// EntryLoader は記事の列挙と読み込みのインターフェース。Storeが実装する。
type EntryLoader interface {
	ListIdentifiers(ctx context.Context) ([]string, error)
	LoadEntry(ctx context.Context, id string) (*model.Entry, error)
}

// Repository は全記事から一覧・タグなどの派生ビューを構築する読み取り専用のインデックス。
// 永続化された派生状態は持たず、呼び出しごとにローダーから再構築する。
type Repository struct {
	loader      EntryLoader
	logger      *slog.Logger
	recorder    Recorder
	concurrency int
}

// RepositoryOption はRepositoryの設定を変更する。
type RepositoryOption func(*Repository)

// WithConcurrency は一覧構築時の並列読み込み数を設定する。0以下は無視する。
func WithConcurrency(n int) RepositoryOption {
	return func(r *Repository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRepositoryLogger はロガーを設定する。
func WithRepositoryLogger(l *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRepositoryRecorder は読み込み失敗のメトリクス記録先を設定する。
func WithRepositoryRecorder(rec Recorder) RepositoryOption {
	return func(r *Repository) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// NewRepository はRepositoryを生成する。
func NewRepository(loader EntryLoader, opts ...RepositoryOption) *Repository {
	r := &Repository{
		loader:      loader,
		logger:      slog.Default(),
		recorder:    nopRecorder{},
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAll は全記事のメタ情報を公開日の新しい順で返す。
// 読み込みに失敗した記事はログに記録して除外し、一覧全体は失敗させない。
// 同じ公開日の記事は列挙順を保つ（安定ソート）。
func (r *Repository) ListAll(ctx context.Context) ([]model.EntryMeta, error) {
	ids, err := r.loader.ListIdentifiers(ctx)
	if err != nil {
		return nil, err
	}

	loaded := make([]*model.Entry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			entry, err := r.loader.LoadEntry(gctx, id)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				r.recorder.RecordLoadFailure(failureReason(err))
				r.logger.Warn("skipping content entry",
					slog.String("slug", id),
					slog.String("error", err.Error()),
				)
				return nil
			}
			loaded[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metas := make([]model.EntryMeta, 0, len(loaded))
	for _, entry := range loaded {
		if entry == nil {
			continue
		}
		metas = append(metas, entry.Meta())
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].PublishedAt.After(metas[j].PublishedAt)
	})

	return metas, nil
}

// GetByIdentifier は記事を1件返す。存在しない場合はnil, nilを返す。
// ListAllを経由せずローダーを直接呼ぶ。
func (r *Repository) GetByIdentifier(ctx context.Context, id string) (*model.Entry, error) {
	return r.loader.LoadEntry(ctx, id)
}

// ListAllTags は全記事のタグを重複なしでバイト順に並べて返す。
// 大文字小文字は区別し、大文字が小文字より前に並ぶ。
func (r *Repository) ListAllTags(ctx context.Context) ([]string, error) {
	metas, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return UniqueTags(metas), nil
}

// TagCounts は各タグを含む記事数を、記事数の多い順で返す。
// 同数のタグはタグ名の昇順に並ぶ。1記事内の重複タグは1件として数える。
func (r *Repository) TagCounts(ctx context.Context) ([]model.TagCount, error) {
	metas, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return CountTags(metas), nil
}

// GetTopTags は記事数の多い順に最大n個のタグ名を返す。
func (r *Repository) GetTopTags(ctx context.Context, n int) ([]string, error) {
	counts, err := r.TagCounts(ctx)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(counts) {
		n = len(counts)
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = counts[i].Name
	}
	return names, nil
}

// ListByTag はタグに完全一致（大文字小文字を区別）する記事を新しい順で返す。
func (r *Repository) ListByTag(ctx context.Context, tag string) ([]model.EntryMeta, error) {
	metas, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.EntryMeta, 0)
	for _, m := range metas {
		if m.Metadata.HasTag(tag) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// ListRecent は新しい順に最大n件の記事を返す。
func (r *Repository) ListRecent(ctx context.Context, n int) ([]model.EntryMeta, error) {
	metas, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n < len(metas) {
		metas = metas[:n]
	}
	return metas, nil
}

// UniqueTags は記事のタグを重複なしでバイト順に並べて返す。
func UniqueTags(metas []model.EntryMeta) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, m := range metas {
		for _, t := range m.Metadata.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}

// CountTags はタグごとの記事数を、記事数の多い順（同数はタグ名の昇順）で返す。
func CountTags(metas []model.EntryMeta) []model.TagCount {
	tags := UniqueTags(metas)
	counts := make([]model.TagCount, len(tags))
	for i, t := range tags {
		counts[i].Name = t
		for _, m := range metas {
			if m.Metadata.HasTag(t) {
				counts[i].Count++
			}
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

func failureReason(err error) string {
	if errors.Is(err, ErrInvalidMetadata) {
		return "invalid_metadata"
	}
	if errors.Is(err, ErrUnterminatedFrontMatter) {
		return "unterminated_front_matter"
	}
	return "parse_error"
}
