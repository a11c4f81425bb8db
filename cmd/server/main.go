package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/MaulRai/tiku/internal/chain"
	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/database"
	"github.com/MaulRai/tiku/internal/ethereum"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/monitor"
	"github.com/MaulRai/tiku/internal/router"
	"github.com/MaulRai/tiku/internal/task"
	"github.com/MaulRai/tiku/internal/upload"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	setupLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database: %v", err)
	}

	// 初始化以太坊客户端
	ethClient, err := ethereum.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize ethereum client: %v", err)
	}

	// 初始化合约管理器并启动链上事件监控
	chainManager, err := chain.NewManager(ethClient.GetEthClient(), cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain manager: %v", err)
	}

	eventMonitor := monitor.NewEventMonitor(chainManager, db)
	if err := eventMonitor.Start(); err != nil {
		logger.Fatal("Failed to start event monitor: %v", err)
	}
	defer eventMonitor.Stop()

	// 初始化文件存储
	store, err := upload.NewStore(cfg.Upload)
	if err != nil {
		logger.Fatal("Failed to initialize upload store: %v", err)
	}

	// 启动定时任务
	taskManager := task.Start(db, cfg)
	defer taskManager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, ethClient, store, cfg)

	// 启动服务器
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")
}

// setupLogger 按配置初始化默认日志器
func setupLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.Output == "file" {
		l, err = logger.NewWithFile(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.SetDefaultLogger(l)
}
