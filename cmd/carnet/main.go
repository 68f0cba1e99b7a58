package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/config"
	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/pkg/client"
	applogger "github.com/Yvesthior/moncareme-agd/pkg/logger"
)

var (
	configPath string
	weekFlag   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "carnet",
	Short:         "Mon Carnet de Carême : suivi hebdomadaire des exercices spirituels",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// token 命令读取服务端配置，自行加载
		if cmd.Name() == "token" {
			return nil
		}
		var err error
		cfg, err = config.LoadClient(configPath)
		if err != nil {
			return err
		}
		logger, err = applogger.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认查找 ./config/config.yaml）")

	listCmd.Flags().StringVar(&weekFlag, "week", "", "周内任意日期 YYYY-MM-DD（默认本周）")
	createCmd.Flags().StringVar(&weekFlag, "week", "", "周内任意日期 YYYY-MM-DD（默认本周）")
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "用户标识（必填）")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(tuiCmd, listCmd, createCmd, logoutCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(&cfg.Client)
}

// resolveCatalog 优先使用服务端目录，失败时回退到本地配置
func resolveCatalog(ctx context.Context, api *client.Client, wakeupSpaceDay int, log *zap.Logger) *catalog.Catalog {
	items, err := api.Exercises(ctx)
	if err != nil || len(items) == 0 {
		log.Warn("获取功课目录失败，使用本地目录", zap.Error(err))
		return catalog.New(wakeupSpaceDay)
	}
	return client.ToCatalog(items)
}

// parseWeek 解析 --week，空值表示今天
func parseWeek(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q，应为 YYYY-MM-DD", s)
	}
	return t, nil
}
