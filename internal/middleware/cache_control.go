package middleware

import (
	"fmt"
	"net/http"
)

// staleWhileRevalidate は期限切れのレスポンスを再検証中に返してよい秒数（7日）。
const staleWhileRevalidate = 604800

// CacheControlValue はmaxAge秒のキャッシュを許可するCache-Controlヘッダー値を返す。
func CacheControlValue(maxAge int) string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d", maxAge, maxAge, staleWhileRevalidate)
}

// cacheHeaderWriter はステータスコードが確定した時点で成功レスポンスにのみキャッシュヘッダーを付与する。
type cacheHeaderWriter struct {
	http.ResponseWriter
	value       string
	wroteHeader bool
}

func (cw *cacheHeaderWriter) WriteHeader(code int) {
	if !cw.wroteHeader {
		cw.wroteHeader = true
		if code < http.StatusBadRequest {
			cw.Header().Set("Cache-Control", cw.value)
			cw.Header().Set("CDN-Cache-Control", cw.value)
		}
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheHeaderWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

// NewCacheControlMiddleware はmaxAge秒のキャッシュヘッダーを付与するミドルウェアを返す。
// エラーレスポンス（4xx/5xx）はキャッシュさせない。
func NewCacheControlMiddleware(maxAge int) func(next http.Handler) http.Handler {
	value := CacheControlValue(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&cacheHeaderWriter{ResponseWriter: w, value: value}, r)
		})
	}
}
