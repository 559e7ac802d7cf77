package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/cache"
	"github.com/medrota/shiftswap/internal/db"
	"github.com/medrota/shiftswap/internal/exchange"
	"github.com/medrota/shiftswap/internal/notify"
	"github.com/medrota/shiftswap/internal/schedule"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	env := LoadEnvironment()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(nil)
	marketplace := cache.NewMarketplace(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	notifier, err := notify.NewNotifier(env.MQTTBrokerURL, "shiftswap-server")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt init")
	}

	schedules := schedule.NewManager(store, marketplace)
	workflow := exchange.NewWorkflow(store, schedules, marketplace, notifier)

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, env, store, schedules, workflow)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
