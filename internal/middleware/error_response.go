package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogapi/internal/api"
	"github.com/hitoshi/blogapi/internal/model"
)

// WriteJSON は値をJSONとして指定のステータスコードで書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteSuccessResponse は成功エンベロープを200で書き込む。
func WriteSuccessResponse(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, api.Success(data, message))
}

// WriteErrorResponse は統一エラーエンベロープでHTTPエラーレスポンスを書き込む。
// HTTPステータスはAPIErrorのStatusと一致させる。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	WriteJSON(w, apiErr.Status, api.Failure(apiErr.Status, apiErr.Message, apiErr.Details))
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, model.NewInternalError())
}
