package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"maitred/internal/cache"
	"maitred/internal/models"
	"maitred/internal/repository"

	"github.com/gin-gonic/gin"
)

// Ctx key and helpers for the authenticated staff member.
// Using unexported type to avoid collisions

type ctxKey string

const actorKey ctxKey = "actor"

func ContextWithActor(ctx context.Context, actor *models.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (*models.User, bool) {
	v := ctx.Value(actorKey)
	if v == nil {
		return nil, false
	}
	actor, ok := v.(*models.User)
	return actor, ok
}

// CORS middleware for handling cross-origin requests from the floor UI
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger middleware for structured request logging
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		actorID, exists := c.Get("actor_id")

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		if exists {
			logFields = append(logFields, "actor_id", actorID)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
		}
	}
}

// Recovery middleware for panic recovery with detailed logging
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// BasicAuth authenticates a staff member via HTTP Basic Auth, checking the
// Valkey cache first and falling back to the database. The resolved actor
// (id and role) travels on the request context so handlers can authorize
// status overrides.
func BasicAuth(userRepo *repository.UserRepository, valkeyClient *cache.ValkeyClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()

		hash := sha256.Sum256([]byte(password))
		passwordHash := fmt.Sprintf("%x", hash)

		if valkeyClient != nil {
			userID, role, err := valkeyClient.GetStaffByAuth(ctx, username, passwordHash)
			if err == nil {
				actor := &models.User{UserID: userID, Email: username, Role: role}
				c.Set("actor_id", userID)
				c.Request = c.Request.WithContext(ContextWithActor(c.Request.Context(), actor))
				c.Next()
				return
			}
		}

		// Fallback: database lookup
		user, err := userRepo.GetByEmail(ctx, username)
		if err != nil || user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if user.PasswordHash == "" || passwordHash != user.PasswordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		// Warm the cache so the next request skips the database
		if valkeyClient != nil {
			if err := valkeyClient.PutStaffAuth(ctx, username, passwordHash, user.UserID, user.Role); err != nil {
				slog.Warn("Failed to cache staff credentials", "error", err)
			}
		}

		c.Set("actor_id", user.UserID)
		c.Request = c.Request.WithContext(ContextWithActor(c.Request.Context(), user))

		c.Next()
	}
}
