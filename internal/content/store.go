// Package content はコンテンツディレクトリ上の記事ファイルの読み込みと、
// 記事一覧・タグなどの派生ビューを提供する。
// 真のデータはディレクトリ上のファイルであり、各操作は呼び出しごとに
// ディレクトリを読み直すため、追加・編集・削除は次の呼び出しで反映される。
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hitoshi/blogapi/internal/model"
)

// DefaultExtension はコンテンツファイルのデフォルト拡張子。
const DefaultExtension = ".mdx"

// Recorder はストアが記録するメトリクスのインターフェース。
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordLoadFailure(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit()          {}
func (nopRecorder) RecordCacheMiss()         {}
func (nopRecorder) RecordLoadFailure(string) {}

// Store はコンテンツディレクトリから記事を列挙・読み込みする。
// ディレクトリは構築時に注入し、プロセス全体のグローバル状態は持たない。
type Store struct {
	dir      string
	ext      string
	cache    *entryCache
	recorder Recorder
	logger   *slog.Logger
}

// Option はStoreの設定を変更する。
type Option func(*Store)

// WithExtension はコンテンツファイルの拡張子を設定する。
func WithExtension(ext string) Option {
	return func(s *Store) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.ext = ext
	}
}

// WithCache は解析済み記事のキャッシュを有効にする。
// キャッシュはファイルの更新時刻とサイズで検証するため、編集は次の読み込みで反映される。
func WithCache() Option {
	return func(s *Store) {
		s.cache = newEntryCache()
	}
}

// WithRecorder はメトリクスの記録先を設定する。
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger はロガーを設定する。
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore は指定ディレクトリを読むStoreを生成する。
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		ext:      DefaultExtension,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir はコンテンツディレクトリのパスを返す。
func (s *Store) Dir() string {
	return s.dir
}

// ListIdentifiers はディレクトリ内のコンテンツファイルの識別子を返す。
// 順序はディレクトリの列挙順（os.ReadDirではファイル名順）。
// ディレクトリが存在しない場合はエラーではなく空のスライスを返す。
func (s *Store) ListIdentifiers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	ids := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), s.ext) {
			continue
		}
		id := strings.TrimSuffix(de.Name(), s.ext)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}

	if s.cache != nil {
		paths := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			paths[s.path(id)] = struct{}{}
		}
		s.cache.retain(paths)
	}

	return ids, nil
}

// LoadEntry は識別子に対応する記事を読み込む。
// ファイルが存在しない場合はnil, nilを返す。
// ヘッダーが不正な場合はパーサーのエラーをラップして返す。
func (s *Store) LoadEntry(ctx context.Context, id string) (*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validIdentifier(id) {
		return nil, nil
	}

	path := s.path(id)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if s.cache != nil {
				s.cache.evict(path)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat entry %q: %w", id, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	if s.cache == nil {
		return s.readEntry(id, path)
	}

	key := fileVersion{modTime: info.ModTime(), size: info.Size()}
	if entry, ok := s.cache.get(path, key); ok {
		s.recorder.RecordCacheHit()
		return entry, nil
	}
	s.recorder.RecordCacheMiss()

	return s.cache.load(path, key, func() (*model.Entry, error) {
		return s.readEntry(id, path)
	})
}

// Ping はコンテンツディレクトリが読み取り可能かを確認する。
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("content directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content path is not a directory: %s", s.dir)
	}
	return nil
}

// Evict は指定パスのキャッシュを破棄する。キャッシュ無効時は何もしない。
func (s *Store) Evict(path string) {
	if s.cache != nil {
		s.cache.evict(path)
	}
}

// IdentifierFromPath はファイルパスが本ストアのコンテンツファイルであれば識別子を返す。
func (s *Store) IdentifierFromPath(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return "", false
	}
	name := filepath.Base(path)
	if !strings.HasSuffix(name, s.ext) {
		return "", false
	}
	id := strings.TrimSuffix(name, s.ext)
	return id, id != ""
}

func (s *Store) readEntry(id, path string) (*model.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entry %q: %w", id, err)
	}

	meta, publishedAt, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry %q: %w", id, err)
	}

	return &model.Entry{
		Slug:        id,
		Metadata:    meta,
		PublishedAt: publishedAt,
		Body:        body,
	}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+s.ext)
}

// validIdentifier はディレクトリ外を指す識別子を拒否する。
func validIdentifier(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return false
	}
	return filepath.Base(id) == id
}
