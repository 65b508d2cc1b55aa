// Package https_server 提供本机桥接 API 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"campus_chat/internal/config"
	"campus_chat/internal/handler"
	"campus_chat/internal/infrastructure/logger"
	"campus_chat/internal/infrastructure/middleware"
	"campus_chat/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化桥接服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则和安全响应头
//  4. 提取可选的 Bearer 身份
//  5. 注册业务路由
func Init(conf *config.Config, handlers *handler.Handlers) *gin.Engine {
	dev := conf.Mode == "dev"
	if !dev {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	// UI 壳与桥接同机运行，origin 不固定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))
	engine.Use(middleware.SecureHeaders(dev))

	engine.Use(middleware.BearerIdentity())

	router.NewRouter(handlers).RegisterRoutes(engine)

	return engine
}
