package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kaboom/config"
	"kaboom/internal/auth"
	"kaboom/internal/game/manager"
	"kaboom/internal/middleware"
	"kaboom/internal/results"
	"kaboom/internal/room"
	"kaboom/internal/storage"
	"kaboom/internal/utils"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. 初始化 Redis
	//-------------------------------------------------------
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}

	//-------------------------------------------------------
	// 2. 可选的 Postgres（战绩归档）
	//-------------------------------------------------------
	var archiver manager.Archiver
	var resultsStore *results.Store
	if dsn := config.C.Database.DSN; dsn != "" {
		if err := storage.InitPostgres(dsn); err != nil {
			utils.Error.Fatalf("Postgres init failed: %v", err)
		}
		resultsStore = results.NewStore(storage.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := resultsStore.EnsureSchema(ctx); err != nil {
			cancel()
			utils.Error.Fatalf("Postgres schema failed: %v", err)
		}
		cancel()
		archiver = resultsStore
	} else {
		utils.Print.Warn("database.dsn empty, game results will not be archived")
	}

	//-------------------------------------------------------
	// 3. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 4. 房间与对局服务
	//-------------------------------------------------------
	repo := room.NewRedisRepo(storage.Rdb, config.C.Redis.TTL)
	roomSvc := room.NewService(repo)
	gameMgr := manager.NewManager(repo, archiver)

	//-------------------------------------------------------
	// 5. 游客登录
	//-------------------------------------------------------
	secret := []byte(config.C.JWT.Secret)
	authGroup := r.Group("/auth")
	{
		ah := auth.NewHandler(secret, time.Duration(config.C.JWT.TTLHours)*time.Hour)
		authGroup.POST("/guest", ah.Guest)
	}

	//-------------------------------------------------------
	// 6. 需要身份的路由
	//-------------------------------------------------------
	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		rh := room.NewHandler(roomSvc)
		authed.GET("/rooms", rh.List)
		authed.POST("/rooms", rh.Create)
		authed.GET("/rooms/:id", rh.Get)
		authed.POST("/rooms/:id/join", rh.Join)
		authed.POST("/rooms/:id/leave", rh.Leave)
		authed.POST("/rooms/:id/start", rh.Start)
		authed.POST("/rooms/:id/reset", rh.Reset)

		gh := manager.NewHandler(gameMgr)
		authed.GET("/rooms/:id/game", gh.State)
		authed.POST("/rooms/:id/game/peek", gh.Peek)
		authed.POST("/rooms/:id/game/peek/done", gh.CompletePeeking)
		authed.POST("/rooms/:id/game/draw", gh.Draw)
		authed.POST("/rooms/:id/game/replace", gh.Replace)
		authed.POST("/rooms/:id/game/discard", gh.Discard)
		authed.POST("/rooms/:id/game/kaboom", gh.CallKaboom)
		authed.POST("/rooms/:id/game/reaction", gh.ResolveReaction)
		authed.POST("/rooms/:id/game/score", gh.FinishScoring)

		if resultsStore != nil {
			authed.GET("/rooms/:id/results", results.NewHandler(resultsStore).Recent)
		}
	}

	//-------------------------------------------------------
	// 7. 启动服务器
	//-------------------------------------------------------
	utils.Info.Printf("Server running on %s", config.C.Server.Port)
	r.Run(config.C.Server.Port)
}
