package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_chat/internal/config"
	"campus_chat/internal/dao"
	"campus_chat/internal/gateway/remote"
	"campus_chat/internal/handler"
	"campus_chat/internal/https_server"
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the localhost bridge API used by the UI shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), config.GetConfig())
	},
}

func serve(ctx context.Context, conf *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. 存储后端
	store, err := dao.OpenStore(ctx, conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			zap.L().Warn("关闭存储失败", zap.Error(err))
		}
	}()
	zap.L().Info("存储初始化成功", zap.String("driver", conf.Driver))

	// 2. 事件发布
	if conf.MessageMode == mq.ModeKafka {
		if err := mq.CreateTopic(&conf.KafkaConfig); err != nil {
			zap.L().Warn("创建 Kafka 主题失败，继续使用已有主题", zap.Error(err))
		}
	}
	publisher, broker, err := mq.NewPublisher(&conf.KafkaConfig)
	if err != nil {
		return err
	}
	defer publisher.Close()
	zap.L().Info("事件发布初始化成功", zap.String("messageMode", conf.MessageMode))

	// 3. 校验器翻译
	if err := handler.InitTrans("zh"); err != nil {
		return fmt.Errorf("init validator translator failed: %w", err)
	}

	// 4. Service / Handler 依赖注入
	gateway := remote.New(&conf.GatewayConfig)
	svc := service.NewServices(store, publisher, gateway, conf)
	engine := https_server.Init(conf, handler.NewHandlers(svc, broker))

	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	srv := &http.Server{Addr: addr, Handler: engine}
	go func() {
		zap.L().Info("桥接服务启动", zap.String("addr", addr), zap.Bool("gateway", gateway.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	zap.L().Info("关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("服务器关闭超时", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
	return nil
}
