package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/filecache/filecache/internal/cache"
	"github.com/filecache/filecache/internal/config"
	"github.com/filecache/filecache/internal/logging"
	"github.com/filecache/filecache/internal/maintenance"
	"github.com/filecache/filecache/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	sweepOnce   bool
	janitor     bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr

	// signalContext 在 janitor 模式下提供可被 SIGINT/SIGTERM 取消的 context，测试可替换。
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(stdErr, "加载 .env 失败: %v\n", err)
	}
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["storage_path"] = cfg.Global.StoragePath
		fields["serializer"] = cfg.Global.Serializer
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序为“配置 → 日志 → 缓存目录 → 清理任务”，目录校验失败直接退出。
	store, err := openStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存目录失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["storage_path"] = cfg.Global.StoragePath
	fields["serializer"] = cfg.Global.Serializer
	fields["sweep_interval"] = cfg.Global.SweepInterval.DurationValue().String()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("缓存目录就绪")

	if !opts.sweepOnce && !opts.janitor {
		return 0
	}

	janitor, err := maintenance.NewJanitor(store, cfg.Global.SweepInterval.DurationValue(), logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化清理任务失败: %v\n", err)
		return 1
	}

	if opts.sweepOnce {
		removed, err := janitor.RunOnce(context.Background())
		if err != nil {
			fmt.Fprintf(stdErr, "缓存清理失败: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdOut, "removed %d expired entries\n", removed)
		return 0
	}

	return runJanitor(janitor, logger)
}

// openStore 按配置创建缓存目录（可选）并构建 Store，随后立即做一次目录校验。
func openStore(cfg *config.Config, logger *logrus.Logger) (cache.Store, error) {
	if cfg.Global.CreateStorage {
		if err := os.MkdirAll(cfg.Global.StoragePath, 0o755); err != nil {
			return nil, fmt.Errorf("create storage path: %w", err)
		}
	}

	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger

	store, err := cache.NewStore(cfg.Global.StoragePath, opts)
	if err != nil {
		return nil, err
	}
	if _, err := store.Dir(); err != nil {
		return nil, err
	}
	return store, nil
}

func runJanitor(janitor *maintenance.Janitor, logger *logrus.Logger) int {
	ctx, stop := signalContext()
	defer stop()

	logger.WithFields(logrus.Fields{"action": "janitor"}).Info("后台清理已启动")
	if err := janitor.Run(ctx); err != nil {
		fmt.Fprintf(stdErr, "后台清理异常退出: %v\n", err)
		return 1
	}
	logger.WithFields(logrus.Fields{"action": "janitor"}).Info("后台清理已停止")
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	flags := flag.NewFlagSet("filecache", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
		sweepOnce  bool
		janitor    bool
	)

	flags.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 FILECACHE_CONFIG 覆盖）")
	flags.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	flags.BoolVar(&showVer, "version", false, "显示版本信息")
	flags.BoolVar(&sweepOnce, "sweep", false, "清理一次过期条目后退出")
	flags.BoolVar(&janitor, "janitor", false, "按 SweepInterval 周期清理，直到收到退出信号")

	if err := flags.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}
	if sweepOnce && janitor {
		return cliOptions{}, errors.New("-sweep 与 -janitor 不能同时使用")
	}

	path := os.Getenv("FILECACHE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
		sweepOnce:   sweepOnce,
		janitor:     janitor,
	}, nil
}

// loadDotEnv 将 .env 中的变量注入进程环境，已存在的环境变量不会被覆盖；文件缺失时忽略。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
