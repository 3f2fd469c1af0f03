// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先（ウェアハウス、Redis など）の疎通確認です。
type Check func(ctx context.Context) error

// Health は /healthz を処理するハンドラーを返します。
// checks のいずれかが失敗した場合は 503 を返します。キャッシュは常に無効化します。
func Health(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				slog.Warn("health check failed", "check", name, "error", err)
				failed[name] = err.Error()
			}
		}

		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}
		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if len(failed) > 0 {
			c.JSON(status, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(status, gin.H{"status": "ok"})
	}
}
