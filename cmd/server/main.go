package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ranihwanifactory/stairpang/internal/agent"
	"github.com/ranihwanifactory/stairpang/internal/config"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/internal/match"
	"github.com/ranihwanifactory/stairpang/internal/network"
	"github.com/ranihwanifactory/stairpang/internal/profile"
	"github.com/ranihwanifactory/stairpang/internal/server"
	storesync "github.com/ranihwanifactory/stairpang/internal/sync"
	"github.com/ranihwanifactory/stairpang/internal/version"
	"github.com/ranihwanifactory/stairpang/pkg/logger"
	"github.com/ranihwanifactory/stairpang/pkg/utils"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var bots int
	flag.IntVar(&bots, "bots", 0, "Number of lobby-filling bot players")
	flag.Parse()

	logger.Log.Info("Starting Stairpang...")
	logger.Log.Info(version.String())

	cfg := config.Load()

	engineCfg := engine.DefaultConfig()
	engineCfg.Goal = cfg.Goal

	// 2. Инициализация ядра
	svc := &server.Service{
		Store:    storesync.NewMemoryStore(),
		Profiles: profile.NewMemoryStore(),
		Hub:      network.NewBroadcaster(),
		Cfg:      engineCfg,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Боты-заполнители: садятся в открытые комнаты и играют по-честному
	for i := 0; i < bots; i++ {
		prof := svc.Profiles.GetOrCreate("", fmt.Sprintf("Bot-%d", i+1))
		coord := match.NewCoordinator(svc.Store, svc.Profiles, prof, engineCfg)
		// Сид зависит только от id бота: его спотыкания воспроизводимы
		bot := agent.NewBot(coord, engineCfg, utils.SeedFromString(prof.ID))

		go bot.Run(ctx)
		go bot.AutoJoin(ctx, svc.Store, time.Second)
	}
	if bots > 0 {
		logger.Log.Infof("🤖 Spawned %d lobby bots", bots)
	}

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.New(svc, cfg.Port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error:", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")
	cancel()
	logger.Log.Info("Done.")
}
