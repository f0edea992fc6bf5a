package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"akasha-terminal-api/internal/cache"
	"akasha-terminal-api/internal/catalog"
	"akasha-terminal-api/internal/config"
	"akasha-terminal-api/internal/gacha"
	"akasha-terminal-api/internal/handler"
	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/internal/router"
	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/internal/store"
	"akasha-terminal-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Infow("starting akasha terminal api",
		"version", cfg.App.Version, "environment", cfg.App.Environment)

	if err := cfg.ApplyBattleFile(cfg.Data.BattleFile); err != nil {
		log.Fatalw("battle config unreadable", "error", err)
	}

	// User record store and repository
	userStore, err := store.New(cfg.Data.UserDir, cfg.Data.LockTimeout, log)
	if err != nil {
		log.Fatalw("failed to initialize user store", "error", err)
	}
	userRepo := repository.NewJSONUserRepository(userStore)

	// Weapon catalog, with optional hot reload
	weaponCatalog, err := catalog.Load(cfg.Data.WeaponFile)
	if err != nil {
		log.Fatalw("failed to load weapon catalog", "error", err)
	}
	log.Infow("weapon catalog loaded", "weapons", len(weaponCatalog.All()))

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if cfg.Data.WatchCatalog {
		if err := weaponCatalog.Watch(rootCtx, log); err != nil {
			log.Warnw("catalog watcher unavailable", "error", err)
		}
	}

	// Draw history repository based on config
	var historyRepo repository.HistoryRepository
	if cfg.Gacha.HistoryEnabled {
		switch cfg.HistoryDB.Type {
		case "mysql":
			mysqlRepo, err := repository.NewMySQLHistoryRepository(cfg.HistoryDB.MySQLDSN(), log)
			if err != nil {
				log.Fatalw("failed to initialize MySQL history", "error", err)
			}
			defer mysqlRepo.Close()
			historyRepo = mysqlRepo
		default: // sqlite
			sqliteRepo, err := repository.NewSQLiteHistoryRepository(cfg.HistoryDB.Path, log)
			if err != nil {
				log.Fatalw("failed to initialize SQLite history", "error", err)
			}
			defer sqliteRepo.Close()
			historyRepo = sqliteRepo
		}
	}

	// Cooldown cache: Redis when configured and reachable, memory otherwise
	var cooldowns cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Warnw("redis unavailable, falling back to memory cache", "error", err)
		} else {
			cooldowns = redisCache
			log.Infow("redis cooldown cache initialized", "addr", cfg.Cache.RedisAddress())
		}
	}
	if cooldowns == nil {
		cooldowns = cache.NewMemoryCache()
	}
	defer cooldowns.Close()

	// Random source: seeded only for reproducible test deployments
	var rng gacha.RandomSource
	if cfg.Gacha.Seed != 0 {
		rng = gacha.NewSeededRNG(cfg.Gacha.Seed)
		log.Warnw("running with a seeded random source", "seed", cfg.Gacha.Seed)
	} else {
		rng = gacha.DefaultRNG()
	}

	tuning := gacha.Tuning{
		FiveStarBase:  cfg.Gacha.FiveStarBase,
		FourStarBase:  cfg.Gacha.FourStarBase,
		SoftPityStart: cfg.Gacha.SoftPityStart,
		SoftPityStep:  cfg.Gacha.SoftPityStep,
		FourStarPity:  cfg.Gacha.FourStarPity,
	}

	// Task catalog: missing file means tasks run on an empty catalog
	var taskDefs []model.TaskDef
	if defs, err := service.LoadTaskDefs(cfg.Data.TaskFile); err != nil {
		log.Warnw("task catalog unavailable", "error", err)
	} else {
		taskDefs = defs
		log.Infow("task catalog loaded", "tasks", len(defs))
	}

	// Services
	loc := cfg.App.Location()
	drawService := service.NewDrawService(userRepo, historyRepo, weaponCatalog, tuning, rng,
		cfg.Gacha.DrawCost, cfg.Gacha.MaxBatch, log)
	userService := service.NewUserService(userRepo, rng, loc, log)
	shopService := service.NewShopService(userRepo, nil, log)
	taskService := service.NewTaskService(userRepo, taskDefs, rng, log)
	battleService := service.NewBattleService(userRepo, cooldowns, rng, service.BattleTuning{
		Cooldown:   cfg.Battle.CooldownDuration(),
		LevelCoeff: cfg.Battle.LevelCoeff,
		WinExp:     cfg.Battle.WinExp,
		WinMoney:   cfg.Battle.WinMoney,
		BotID:      cfg.Battle.BotID,
	}, log)
	synthService := service.NewSynthesisService(userRepo, nil, rng, log)

	// Daily/weekly reset scheduler (tasks + shop stock)
	scheduler := service.NewResetScheduler(taskService, shopService, loc, log)
	if err := scheduler.Start(); err != nil {
		log.Fatalw("failed to start reset scheduler", "error", err)
	}

	// Router
	r := router.New(router.Config{
		Handler:          handler.New(cfg.App.Version, weaponCatalog),
		UserHandler:      handler.NewUserHandler(userService, taskService),
		DrawHandler:      handler.NewDrawHandler(drawService, taskService),
		ShopHandler:      handler.NewShopHandler(shopService, taskService),
		TaskHandler:      handler.NewTaskHandler(taskService),
		BattleHandler:    handler.NewBattleHandler(battleService, taskService),
		SynthesisHandler: handler.NewSynthesisHandler(synthService, taskService),
		AdminHandler:     handler.NewAdminHandler(userService, historyRepo),
		Logger:           log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")

	rootCancel()
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server shutdown error", "error", err)
	}

	log.Infow("server stopped")
}
