package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/strack-api/internal/middleware"
	"github.com/noah-isme/strack-api/internal/models"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth     *AuthHandler
	Students *StudentHandler
	Roster   *RosterHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts health endpoints at the root and the API under prefix. Every API
// route resolves an optional session; mutations additionally require the
// matching capability and held roster state requires a signed-in user.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, tokens middleware.TokenValidator) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.OptionalJWT(tokens))

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", middleware.JWT(tokens), h.Auth.Logout)
	auth.POST("/admin", middleware.JWT(tokens), h.Auth.AdminMode)

	rosterGroup := api.Group("/roster")
	rosterGroup.GET("", h.Roster.View)
	rosterGroup.GET("/export.csv", h.Roster.Export("csv"))
	rosterGroup.GET("/export.pdf", h.Roster.Export("pdf"))

	state := rosterGroup.Group("/state", middleware.JWT(tokens), middleware.RequireRoles(models.RoleUser, models.RoleAdmin))
	state.GET("", h.Roster.State)
	state.PUT("", h.Roster.UpdateState)
	state.DELETE("", h.Roster.ResetState)
	state.POST("/more", h.Roster.LoadMore)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.POST("", middleware.RequireCapability(middleware.CapabilityAdd), h.Students.Create)
	students.PUT("/:id", middleware.RequireCapability(middleware.CapabilityEdit), h.Students.Update)
	students.DELETE("/:id", middleware.RequireCapability(middleware.CapabilityDelete), h.Students.Delete)

	api.GET("/courses", h.Students.Courses)
}
