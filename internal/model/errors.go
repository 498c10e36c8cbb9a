package model

import (
	"fmt"
	"net/http"
)

// APIError はクライアントに返すエラーを表す。
// Statusはそのままエンベロープの error.code とHTTPステータスになる。
type APIError struct {
	Status  int    // HTTPステータスコード
	Message string // 利用者向けメッセージ
	Details any    // 任意の補足情報
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError(slug string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Post with slug \"%s\" not found", slug),
	}
}

// NewTagNotFoundError はどの記事からも参照されていないタグへのエラーを生成する。
func NewTagNotFoundError(tag string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Tag \"%s\" does not exist", tag),
	}
}

// NewNoPostsForTagError はタグ自体は存在するが一致する記事がない場合のエラーを生成する。
func NewNoPostsForTagError(tag string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("No posts found with tag \"%s\"", tag),
	}
}

// NewPageOutOfRangeError は存在しないページが要求された場合のエラーを生成する。
func NewPageOutOfRangeError(page, totalPages int) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Page %d does not exist. Total pages: %d", page, totalPages),
	}
}

// NewTagPageOutOfRangeError はタグ別一覧で存在しないページが要求された場合のエラーを生成する。
func NewTagPageOutOfRangeError(tag string, page, totalPages int) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Page %d does not exist for tag \"%s\". Total pages: %d", page, tag, totalPages),
	}
}

// NewRouteNotFoundError は未定義のルートへのエラーを生成する。
func NewRouteNotFoundError(path string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Route %s not found", path),
	}
}

// NewMethodNotAllowedError は許可されていないメソッドへのエラーを生成する。
func NewMethodNotAllowedError(method string) *APIError {
	return &APIError{
		Status:  http.StatusMethodNotAllowed,
		Message: fmt.Sprintf("Method %s not allowed", method),
	}
}

// NewInternalError は内部エラーを生成する。
// 原因はログにのみ記録し、ファイルパス等はレスポンスに含めない。
func NewInternalError() *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	}
}
