// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"stock_ingest/internal/feature/prices/usecase"
)

// IngestRunner は取り込み処理のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type IngestRunner interface {
	Run(ctx context.Context, stockIDs []string) (usecase.Report, error)
}

var errPanicked = errors.New("ingest run panicked")

// レスポンス本文。スケジューラはステータスコードのみを見る。
const (
	bodySuccess = "Success"
	bodyFailed  = "Failed"
	bodyBusy    = "Already running"
)

// TriggerHandler は外部スケジューラからの実行要求を処理します。
// 同一プロセス内では同時に 1 回しか実行しません。
type TriggerHandler struct {
	uc       IngestRunner
	stockIDs []string
	timeout  time.Duration
	mu       sync.Mutex
}

// NewTriggerHandler は対象銘柄とタイムアウトを指定して TriggerHandler を生成します。
// timeout が 0 以下の場合はリクエストのコンテキストのみで打ち切ります。
func NewTriggerHandler(uc IngestRunner, stockIDs []string, timeout time.Duration) *TriggerHandler {
	return &TriggerHandler{uc: uc, stockIDs: stockIDs, timeout: timeout}
}

// Run は取り込みを1回実行し、200 "Success" または 500 "Failed" を返します。
//
// エンドポイント例:
// POST /run
func (h *TriggerHandler) Run(c *gin.Context) {
	if !h.mu.TryLock() {
		c.String(http.StatusConflict, bodyBusy)
		return
	}
	defer h.mu.Unlock()

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	report, err := h.run(ctx)
	if err != nil {
		slog.Error("ingest run failed", "run_id", report.RunID, "error", err)
		c.String(http.StatusInternalServerError, bodyFailed)
		return
	}

	c.Header("X-Run-ID", report.RunID)
	c.String(http.StatusOK, bodySuccess)
}

// run はユースケースの panic をエラーに変換します。
func (h *TriggerHandler) run(ctx context.Context) (report usecase.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ingest run panicked", "panic", r)
			err = errPanicked
		}
	}()
	return h.uc.Run(ctx, h.stockIDs)
}
