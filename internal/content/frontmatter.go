package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hitoshi/blogapi/internal/model"
)

// フロントマターの形式。
const (
	FormatNone = ""
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var (
	// ErrUnterminatedFrontMatter は開始区切り行に対応する終了区切り行がない場合のエラー。
	ErrUnterminatedFrontMatter = errors.New("front matter is not terminated")
	// ErrInvalidMetadata は必須項目の欠落や日付の不正など、メタデータの内容が不正な場合のエラー。
	ErrInvalidMetadata = errors.New("invalid metadata")
)

var delimiters = map[string]string{
	"---": FormatYAML,
	"+++": FormatTOML,
}

// SplitFrontMatter はファイル内容をヘッダーブロックと本文に分割する。
// 1行目が "---"（YAML）または "+++"（TOML）の場合、同じ区切り行までをヘッダーとする。
// 本文は終了区切り行の改行の直後からファイル末尾までで、内容は変更しない。
// ヘッダーがないファイルは形式FormatNoneとして全体を本文として返す。
func SplitFrontMatter(text string) (header, body, format string, err error) {
	text = strings.TrimPrefix(text, "\ufeff")

	first, rest, ok := cutLine(text)
	format, isDelim := delimiters[trimLine(first)]
	if !isDelim {
		return "", text, FormatNone, nil
	}
	if !ok {
		return "", "", "", ErrUnterminatedFrontMatter
	}
	delim := trimLine(first)

	var hdr strings.Builder
	for {
		line, remaining, hasNext := cutLine(rest)
		if trimLine(line) == delim {
			return hdr.String(), remaining, format, nil
		}
		if !hasNext {
			return "", "", "", ErrUnterminatedFrontMatter
		}
		hdr.WriteString(line)
		hdr.WriteByte('\n')
		rest = remaining
	}
}

// ParseFrontMatter はファイル内容を解析し、メタデータ・公開日・本文を返す。
// ヘッダーの構文エラーはYAML/TOMLパーサーのエラーをラップして返す。
func ParseFrontMatter(content []byte) (model.Metadata, time.Time, string, error) {
	header, body, format, err := SplitFrontMatter(string(content))
	if err != nil {
		return model.Metadata{}, time.Time{}, "", err
	}

	raw := map[string]any{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
			return model.Metadata{}, time.Time{}, "", fmt.Errorf("parse yaml front matter: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal([]byte(header), &raw); err != nil {
			return model.Metadata{}, time.Time{}, "", fmt.Errorf("parse toml front matter: %w", err)
		}
	}

	meta, publishedAt, err := metadataFromMap(raw)
	if err != nil {
		return model.Metadata{}, time.Time{}, "", err
	}
	return meta, publishedAt, body, nil
}

// metadataFromMap はデコード済みのヘッダーをMetadataに変換し、必須項目を検証する。
func metadataFromMap(raw map[string]any) (model.Metadata, time.Time, error) {
	meta := model.Metadata{
		Title:       stringValue(raw["title"]),
		Description: stringValue(raw["description"]),
		Tags:        stringsValue(raw["tags"]),
		Cover:       stringValue(raw["cover"]),
	}

	if meta.Title == "" {
		return model.Metadata{}, time.Time{}, fmt.Errorf("%w: title is required", ErrInvalidMetadata)
	}
	if meta.Description == "" {
		return model.Metadata{}, time.Time{}, fmt.Errorf("%w: description is required", ErrInvalidMetadata)
	}

	date, publishedAt, err := dateValue(raw["date"])
	if err != nil {
		return model.Metadata{}, time.Time{}, err
	}
	meta.Date = date

	return meta, publishedAt, nil
}

func dateValue(v any) (string, time.Time, error) {
	switch d := v.(type) {
	case nil:
		return "", time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidMetadata)
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return "", time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidMetadata)
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalidMetadata, s, err)
		}
		return d, t, nil
	case time.Time:
		if d.Equal(d.Truncate(24*time.Hour)) && d.Location() == time.UTC {
			return d.Format(time.DateOnly), d, nil
		}
		return d.Format(time.RFC3339), d, nil
	case toml.LocalDate:
		return d.String(), d.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return d.String(), d.AsTime(time.UTC), nil
	default:
		return "", time.Time{}, fmt.Errorf("%w: unsupported date value %v", ErrInvalidMetadata, v)
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// stringsValue はタグ値を文字列のスライスに変換する。
// 単一の文字列は要素1つのスライスとして扱い、重複は除去しない。
func stringsValue(v any) []string {
	switch list := v.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			out = append(out, stringValue(item))
		}
		return out
	case string:
		if list == "" {
			return []string{}
		}
		return []string{list}
	default:
		return []string{fmt.Sprint(list)}
	}
}

// cutLine は最初の改行で文字列を分割する。改行がなければokはfalse。
func cutLine(s string) (line, rest string, ok bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func trimLine(line string) string {
	return strings.TrimRight(line, " \t\r")
}
