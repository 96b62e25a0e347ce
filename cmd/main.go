package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/sports-center-backend/cache"
	"github.com/vnkhanh/sports-center-backend/config"
	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/routes"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.InitDB(cfg.Database)
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	// Redis nếu có REDIS_URL, không thì cache trong process
	var statsCache cache.Cache = cache.NewMemoryCache()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Không kết nối được Redis, dùng cache bộ nhớ: %v", err)
		} else {
			defer rc.Close()
			statsCache = rc
			log.Println("Redis cache connected")
		}
	}

	stats := services.NewStatsService(db, statsCache, cfg.Stats.CacheTTL)
	snapshot := services.NewSnapshotJob(db, stats, models.PeriodMonthly)
	snapshot.Start(ctx, cfg.Stats.SnapshotInterval)

	r := gin.Default()

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, routes.Deps{
		DB:             db,
		Cache:          statsCache,
		Stats:          stats,
		Snapshot:       snapshot,
		Avatars:        utils.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Bucket),
		Mailer:         utils.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password),
		GoogleClientID: cfg.GoogleClientID,
	})

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Sports center server is running")
	})

	log.Println("Server running at Port:" + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
