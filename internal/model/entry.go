// Package model はドメインモデルを定義する。
package model

import "time"

// Metadata は記事ファイル先頭のフロントマターから読み込んだ記述属性を表す。
// APIでは "frontmatter" キーで返す。
type Metadata struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"` // ヘッダーに書かれた値をそのまま保持する
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Cover       string   `json:"cover,omitempty"`
}

// HasTag はタグ一覧に完全一致（大文字小文字を区別）するタグが含まれるかを返す。
func (m Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Entry は1つのコンテンツファイルから読み込んだ記事を表す。
// Slugはファイル名から拡張子を除いたもので、公開URLのキーとなる。
type Entry struct {
	Slug        string
	Metadata    Metadata
	PublishedAt time.Time
	Body        string // 未加工のMDXテキスト
}

// Meta は本文を除いた記事のメタ情報を返す。
func (e *Entry) Meta() EntryMeta {
	return EntryMeta{
		Slug:        e.Slug,
		Metadata:    e.Metadata.clone(),
		PublishedAt: e.PublishedAt,
	}
}

// Clone は呼び出し側が変更しても元の値に影響しないコピーを返す。
func (e *Entry) Clone() *Entry {
	c := *e
	c.Metadata = e.Metadata.clone()
	return &c
}

// EntryMeta は一覧表示用の本文なしの記事情報。
type EntryMeta struct {
	Slug        string    `json:"slug"`
	Metadata    Metadata  `json:"frontmatter"`
	PublishedAt time.Time `json:"-"`
}

// TagCount はタグとそのタグを含む記事数の組。
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (m Metadata) clone() Metadata {
	c := m
	c.Tags = make([]string, len(m.Tags))
	copy(c.Tags, m.Tags)
	return c
}
