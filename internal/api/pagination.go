package api

import (
	"fmt"
	"strconv"
	"strings"
)

// デフォルトのページネーション設定。
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination はページネーション情報のレスポンス形式。
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	TotalPosts      int  `json:"totalPosts"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Window はコレクションから切り出した1ページ分の要素とページネーション情報。
type Window[T any] struct {
	Items      []T
	Pagination Pagination
}

// PageOutOfRangeError は空でないコレクションに対して総ページ数を超えるページが要求された場合のエラー。
type PageOutOfRangeError struct {
	Page       int
	TotalPages int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d is out of range (total pages: %d)", e.Page, e.TotalPages)
}

// Paginate はクエリ文字列のpageとpageSizeを解釈してClampPaginationを適用する。
// 未指定や数値でない値はエラーにせず、デフォルト値として扱う。
func Paginate(rawPage, rawPageSize string, defaultPageSize, maxPageSize int) (page, pageSize int) {
	return ClampPagination(parseInt(rawPage), parseInt(rawPageSize), defaultPageSize, maxPageSize)
}

// ClampPagination はページ番号とページサイズを有効な範囲に正規化する。
// pageSizeが1未満またはmaxPageSizeを超える場合はdefaultPageSizeを、
// pageが1未満の場合は1を返す。有効な組はそのまま返す。
func ClampPagination(page, pageSize, defaultPageSize, maxPageSize int) (int, int) {
	if maxPageSize < 1 {
		maxPageSize = MaxPageSize
	}
	if defaultPageSize < 1 || defaultPageSize > maxPageSize {
		defaultPageSize = min(DefaultPageSize, maxPageSize)
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return page, pageSize
}

// WindowOf はitemsからpage番目（1始まり）のpageSize件を切り出す。
// 総ページ数は ceil(len(items)/pageSize) で、要素がない場合は0になる。
// 要素があり、pageが総ページ数を超える場合は*PageOutOfRangeErrorを返す。
func WindowOf[T any](items []T, page, pageSize int) (Window[T], error) {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if total > 0 && page > totalPages {
		return Window[T]{}, &PageOutOfRangeError{Page: page, TotalPages: totalPages}
	}

	start, end := 0, 0
	if total > 0 {
		start = (page - 1) * pageSize
		end = min(start+pageSize, total)
	}

	slice := make([]T, end-start)
	copy(slice, items[start:end])

	return Window[T]{
		Items: slice,
		Pagination: Pagination{
			CurrentPage:     page,
			PageSize:        pageSize,
			TotalPages:      totalPages,
			TotalPosts:      total,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}, nil
}

// parseInt は数値として解釈できない値を0として返す。
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
