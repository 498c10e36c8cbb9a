package content

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hitoshi/blogapi/internal/model"
)

// fileVersion はキャッシュの有効性判定に使うファイルの状態。
type fileVersion struct {
	modTime time.Time
	size    int64
}

type cachedEntry struct {
	version fileVersion
	entry   *model.Entry
}

// entryCache はパスごとの解析済み記事を保持するリードスルーキャッシュ。
// 呼び出し側が観測したファイル状態と一致する場合のみヒットとする。
type entryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedEntry
	group   singleflight.Group
}

func newEntryCache() *entryCache {
	return &entryCache{
		entries: make(map[string]cachedEntry),
	}
}

// get はversionが一致するキャッシュ済み記事のコピーを返す。
func (c *entryCache) get(path string, version fileVersion) (*model.Entry, bool) {
	c.mu.RLock()
	ce, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || !ce.version.modTime.Equal(version.modTime) || ce.version.size != version.size {
		return nil, false
	}
	return ce.entry.Clone(), true
}

// load は同一パスへの同時読み込みを1回にまとめ、成功した結果をキャッシュする。
func (c *entryCache) load(path string, version fileVersion, read func() (*model.Entry, error)) (*model.Entry, error) {
	v, err, _ := c.group.Do(flightKey(path, version), func() (any, error) {
		if entry, ok := c.get(path, version); ok {
			return entry, nil
		}

		entry, err := read()
		if err != nil || entry == nil {
			c.evict(path)
			return entry, err
		}

		c.mu.Lock()
		c.entries[path] = cachedEntry{version: version, entry: entry}
		c.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	entry, _ := v.(*model.Entry)
	if entry == nil {
		return nil, nil
	}
	return entry.Clone(), nil
}

// flightKey は読み込みをまとめるキー。編集前の読み込みに編集後の呼び出しが相乗りしないよう版を含める。
func flightKey(path string, version fileVersion) string {
	return path + "\x00" + strconv.FormatInt(version.modTime.UnixNano(), 10) + "/" + strconv.FormatInt(version.size, 10)
}

func (c *entryCache) evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// retain はpathsに含まれないエントリを破棄する。
func (c *entryCache) retain(paths map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.entries {
		if _, ok := paths[p]; !ok {
			delete(c.entries, p)
		}
	}
}

func (c *entryCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
