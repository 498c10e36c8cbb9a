// Package api はレスポンスのエンベロープ、ページネーション、
// 記事ごとの派生表示項目（読了時間・抜粋）の計算を提供する。
package api

import "time"

// timestampLayout はエンベロープのtimestampの形式（ミリ秒精度のISO-8601、UTC）。
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// nowFunc はテストで時刻を固定するために差し替える。
var nowFunc = time.Now

// SuccessEnvelope は成功レスポンスの共通形式。
type SuccessEnvelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorBody はエラーレスポンスのerror部分。
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope はエラーレスポンスの共通形式。
type ErrorEnvelope struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

// Success は成功エンベロープを生成する。messageが空の場合は出力しない。
func Success(data any, message string) SuccessEnvelope {
	return SuccessEnvelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: Timestamp(),
	}
}

// Failure はエラーエンベロープを生成する。detailsがnilの場合は出力しない。
func Failure(code int, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: Timestamp(),
	}
}

// Timestamp は現在時刻をエンベロープ用の形式で返す。
func Timestamp() string {
	return nowFunc().UTC().Format(timestampLayout)
}
