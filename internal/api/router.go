package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"maintenance-checklist-backend/config"
	"maintenance-checklist-backend/internal/auth"
	"maintenance-checklist-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, tokens *auth.Manager, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	limit := rate.Limit(cfg.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(limit, burst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Auth surface, no token required.
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/forgot", h.ForgotPassword)
		api.POST("/resend-forgot", h.ResendForgotPassword)
		api.POST("/reset-password", h.ResetPassword)

		// Push subscriptions.
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.RequireAuth(tokens))
		{
			authed.GET("/user", h.CurrentUser)

			// Machine registry.
			authed.POST("/orgs/:org_id/machines", h.CreateMachine)
			authed.GET("/orgs/:org_id/machines", h.GetMachines)
			authed.GET("/machines/:machine_id", h.GetMachine)
			authed.PUT("/machines/:machine_id", h.UpdateMachine)
			authed.PUT("/machines/:machine_id/status", h.UpdateMachineStatus)
			authed.DELETE("/machines/:machine_id", h.DeleteMachine)

			// Checkpoints.
			authed.POST("/checkpoints", h.CreateCheckpoint)
			authed.GET("/orgs/:org_id/checkpoints", h.GetCheckpoints)

			// Submission lifecycle.
			authed.POST("/submissions", h.CreateSubmission)
			authed.PUT("/submissions/:submission_id/maintenance", h.SetMaintenanceOutcome)
			authed.PUT("/submissions/:submission_id/admin-action", h.SetAdminAcknowledgement)

			// Reporting projections, read-only and cacheable.
			authed.GET("/orgs/:org_id/coverage", caching, h.GetCoverageCounts)
			authed.GET("/orgs/:org_id/machines/coverage", caching, h.GetMachineCounts)
			authed.GET("/orgs/:org_id/machines/pending", caching, h.GetPendingByMachine)
			authed.GET("/orgs/:org_id/dashboard", caching, h.GetDashboardSummary)
			authed.GET("/orgs/:org_id/checklist-counts", caching, h.GetChecklistCountsForDate)
			authed.GET("/departments", h.GetDepartments)
			authed.GET("/orgs/:org_id/departments/coverage", caching, h.GetDepartmentCounts)
			authed.GET("/orgs/:org_id/operators", h.GetOperators)
		}
	}

	return r
}
