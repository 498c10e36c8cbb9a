package api

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// WordsPerMinute は読了時間の算出に使う1分あたりの単語数。
	WordsPerMinute = 200
	// DefaultExcerptLength は抜粋の最大文字数のデフォルト値。
	DefaultExcerptLength = 200
)

var (
	markupChars = regexp.MustCompile("[#*_`\\[\\]()]")
	newlineRuns = regexp.MustCompile(`\n+`)
)

// ReadingTimeMinutes は本文の単語数から読了時間（分）を見積もる。
// 切り上げで、空の本文でも1分を返す。
func ReadingTimeMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return max(minutes, 1)
}

// Excerpt は本文からマークアップ記号を除いた抜粋を返す。
// 改行の連続は空白1つにまとめ、maxLength文字を超える場合は切り詰めて "..." を付ける。
func Excerpt(body string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	clean := markupChars.ReplaceAllString(body, "")
	clean = newlineRuns.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	if utf8.RuneCountInString(clean) <= maxLength {
		return clean
	}
	runes := []rune(clean)
	return string(runes[:maxLength]) + "..."
}
