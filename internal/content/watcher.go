package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher はコンテンツディレクトリの変更を監視し、変更されたファイルのキャッシュを破棄する。
// キャッシュは読み込み時にも更新時刻で検証されるため、Watcherは正しさには必須ではなく、
// 削除済みファイルのキャッシュを早めに解放し変更をログに残す役割を持つ。
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// onChange はテスト用のフック。イベント処理後に識別子と種別で呼ばれる。
	onChange func(id, op string)

	started  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher はstoreのディレクトリを監視するWatcherを生成する。
func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(store.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch content directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:   store,
		watcher: fw,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Run はコンテキストがキャンセルされるかCloseされるまでイベントを処理する。
func (w *Watcher) Run(ctx context.Context) {
	w.started.Store(true)
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("content watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close は監視を停止する。Runが動作中の場合は終了を待つ。
func (w *Watcher) Close(ctx context.Context) error {
	var err error
	w.stopOnce.Do(func() {
		err = w.watcher.Close()
	})
	if !w.started.Load() {
		return err
	}
	select {
	case <-w.done:
	case <-ctx.Done():
	}
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	id, ok := w.store.IdentifierFromPath(event.Name)
	if !ok {
		return
	}

	var op string
	switch {
	case event.Has(fsnotify.Create):
		op = "create"
	case event.Has(fsnotify.Write):
		op = "write"
	case event.Has(fsnotify.Remove):
		op = "remove"
	case event.Has(fsnotify.Rename):
		op = "rename"
	default:
		return
	}

	w.store.Evict(event.Name)
	w.logger.Info("content changed",
		slog.String("slug", id),
		slog.String("op", op),
	)

	if w.onChange != nil {
		w.onChange(id, op)
	}
}
