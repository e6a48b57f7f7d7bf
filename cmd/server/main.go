package main

import (
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logger"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/repository"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/router"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/settle"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志器
	level := logger.ParseLogLevel(cfg.Log.GetLevel())
	if cfg.Log.GetOutput() == "file" {
		fileLogger, err := logger.NewWithFileRotation(level, cfg.Log.GetFile())
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
	} else {
		stdLogger, err := logger.New(level)
		if err != nil {
			logger.Fatal("Failed to initialize logger: %v", err)
		}
		logger.SetDefaultLogger(stdLogger)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, cfg)

	// 启动结算流水线
	pipeline, err := settle.NewPipeline(db, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize settle pipeline: %v", err)
	}
	pipeline.Start()
	defer pipeline.Stop()

	// 启动定时任务
	manager := task.Start(db, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
