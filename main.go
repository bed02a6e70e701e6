package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"livescore-service/config"
	"livescore-service/database"
	"livescore-service/logger"
	"livescore-service/services"
	"livescore-service/web"
)

func main() {
	logger.Println("🏸 Starting Livescore Socket Listener...")

	// 加载配置
	cfg := config.Load()

	logger.Printf("Livescore Host : %s", cfg.LivescoreHost)
	logger.Printf("HTTP Port      : %s", cfg.Port)
	logger.Printf("Court List     : %s", strings.Join(cfg.CourtList, ", "))

	// 连接数据库 (BTP 比赛记录查询,可选)
	var matchStore *services.MatchStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}

		matchStore = services.NewMatchStore(db)
		logger.Println("Database connected and migrated")
	} else {
		logger.Println("[DB] ⚠️  DATABASE_URL not set, BTP match lookup disabled")
	}

	// 核心组件
	registry := services.NewCourtRegistry(cfg.CourtList)
	store := services.NewCourtStateStore()
	history := services.NewEventHistory()
	dispatcher := services.NewDispatcher(store, history)

	// Socket 客户端 + 房间订阅
	socketClient := services.NewSocketClient(cfg.LivescoreHost)
	rooms := services.NewRoomSubscriptionManager(socketClient, store)

	// 监听各种事件名变体,统一汇入分发器
	for _, event := range []string{
		"addPoint", "updatescore", "updateScore",
		"play", "playgame",
		"clearLapangan", "message",
	} {
		name := event
		socketClient.On(name, func(payload interface{}) {
			dispatcher.Dispatch(name, payload)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接(含重连)成功后重新加入全部房间
	socketClient.SetOnConnect(func() {
		rooms.JoinAll(ctx, registry.Courts())
	})

	// 启动 HTTP 服务器
	server := web.NewServer(cfg, store, history, matchStore, rooms, socketClient, registry)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Web server error: %v", err)
		}
	}()
	logger.Printf("🌐 HTTP server started on port %s", cfg.Port)

	// 连接 socket (失败由重连循环接管)
	go func() {
		if err := socketClient.Connect(); err != nil {
			logger.Errorf("[Socket] ❌ Initial connect failed: %v", err)
		}
	}()

	// 可选的 AMQP 事件桥接
	var bridge *services.AMQPBridge
	if cfg.AMQPUrl != "" {
		bridge = services.NewAMQPBridge(cfg.AMQPUrl, cfg.AMQPQueue, dispatcher)
		if err := bridge.Start(); err != nil {
			logger.Errorf("[AMQP] ❌ Bridge start failed: %v", err)
			bridge = nil
		}
	}

	logger.Println("👂 Listening for broadcasts... Press Ctrl+C to stop.")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("🛑 Shutting down...")

	// 取消在途的房间加入等待,再关闭各组件
	cancel()
	socketClient.Close()
	if bridge != nil {
		bridge.Stop()
	}
	server.Stop()

	logger.Println("👋 Service stopped")
}
