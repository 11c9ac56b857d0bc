package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchsmith/pitchsmith/internal/config"
	"github.com/pitchsmith/pitchsmith/internal/conversation"
	"github.com/pitchsmith/pitchsmith/internal/generator"
	handlers "github.com/pitchsmith/pitchsmith/internal/http/api/front/handlers"
	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/quota"
	"github.com/pitchsmith/pitchsmith/internal/ratelimit"
	"github.com/pitchsmith/pitchsmith/internal/security"
)

// Deps bundles the services the front API needs.
type Deps struct {
	DB      *gorm.DB
	JWT     config.JWTConfig
	Engine  *generator.Engine
	Threads *conversation.Store
	Quota   *quota.Manager
	Limiter *ratelimit.Manager
}

// RegisterFrontRoutes registers user-facing routes, middleware, and handlers.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	group := r.Group("/v0")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT)
	group.POST("/register", authHandler.Register)
	group.POST("/login", authHandler.Login)

	authed := group.Group("")
	authed.Use(userAuthMiddleware(deps.DB, deps.JWT))

	profileHandler := handlers.NewProfileHandler(deps.DB)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)

	quotaHandler := handlers.NewQuotaHandler(deps.Quota)
	authed.GET("/quota", quotaHandler.Status)

	catalogHandler := handlers.NewCatalogHandler()
	authed.GET("/tones", catalogHandler.Tones)

	generateHandler := handlers.NewGenerateHandler(deps.Engine)
	limited := authed.Group("")
	limited.Use(rateLimitMiddleware(deps.Limiter))
	limited.POST("/generate/proposal", generateHandler.Proposal)
	limited.POST("/generate/buyer-reply", generateHandler.BuyerReply)
	limited.POST("/generate/profile", generateHandler.Profile)
	limited.POST("/chat", generateHandler.Chat)

	conversationHandler := handlers.NewConversationHandler(deps.Threads)
	authed.GET("/conversations", conversationHandler.List)
	authed.GET("/conversations/:id/messages", conversationHandler.Messages)
	authed.PUT("/conversations/:id", conversationHandler.Rename)
	authed.DELETE("/conversations/:id", conversationHandler.Delete)

	artifactHandler := handlers.NewArtifactHandler(deps.DB)
	authed.GET("/artifacts", artifactHandler.List)
	authed.GET("/artifacts/:id", artifactHandler.Get)
}

// userAuthMiddleware validates user JWTs and loads the user into context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.AccountID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active || user.Disabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set("user", &user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// rateLimitMiddleware throttles generation endpoints per user.
func rateLimitMiddleware(limiter *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		userID := c.GetUint64("userID")
		result, errAllow := limiter.Allow(c.Request.Context(), ratelimit.UserKey(userID))
		if errAllow != nil {
			c.Next()
			return
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
