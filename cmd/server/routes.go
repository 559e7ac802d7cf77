package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/medrota/shiftswap/internal/db"
	"github.com/medrota/shiftswap/internal/exchange"
	"github.com/medrota/shiftswap/internal/http/api"
	authapi "github.com/medrota/shiftswap/internal/http/api/auth/endpoints"
	shiftapi "github.com/medrota/shiftswap/internal/http/api/shifts/endpoints"
	"github.com/medrota/shiftswap/internal/schedule"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, schedules *schedule.Manager, workflow *exchange.Workflow) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		authapi.AuthSessionModule(env.SecretKey, store),
		shiftapi.ShiftModule(schedules),
		shiftapi.ExchangeModule(workflow),
	)
}
