package main

import (
	"fmt"
	"os"

	"campus_chat/internal/config"
	"campus_chat/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Flag variables.
var (
	configPath string
	logMode    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "campus_chat",
	Short: "Local chat-thread identity and room summary core for the campus marketplace app",
	// 每个子命令运行前加载配置并初始化日志
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		mode := logMode
		if mode == "" {
			mode = conf.Mode
		}
		if err := logger.Init(&conf.LogConfig, mode); err != nil {
			return fmt.Errorf("init logger failed: %w", err)
		}
		zap.L().Debug("配置加载完成", zap.String("driver", conf.Driver), zap.String("messageMode", conf.MessageMode))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a TOML config file. By default configs/config_local.toml and configs/config.toml are searched.")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "",
		"Override mainConfig.mode for logging: dev tees logs to the console.")
	rootCmd.AddCommand(serveCmd, roomsCmd)
}

// loadConfig --config 优先，否则按默认路径查找
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.GetConfig(), nil
}
