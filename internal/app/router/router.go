// Package router はHTTPルーティングを構築します。
package router

import (
	"github.com/gin-gonic/gin"

	pricehandler "stock_ingest/internal/feature/prices/transport/handler"
	"stock_ingest/internal/platform/http/handler"
	jwtmw "stock_ingest/internal/platform/jwt"
)

// NewRouter は /healthz と /run を持つルータを生成します。
// triggerSecret が空の場合、/run は認証なしで公開されます（ローカル実行用）。
func NewRouter(trigger *pricehandler.TriggerHandler, triggerSecret string, checks map[string]handler.Check) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 導通確認用
	health := handler.Health(checks)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// 取り込み実行（Cloud Scheduler などから呼び出す）
	if triggerSecret == "" {
		r.POST("/run", trigger.Run)
		return r
	}
	r.POST("/run", jwtmw.TriggerAuth(triggerSecret), trigger.Run)
	return r
}
