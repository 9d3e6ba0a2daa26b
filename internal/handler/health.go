package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BreakerState is satisfied by *infra.Mailer.
type BreakerState interface {
	State() string
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the mailer breaker and the
// dead letter backlog; never exposes credentials or internals. The mail path
// is informative only and does not turn the check unhealthy.
func Health(db *gorm.DB, rdb *redis.Client, mailer BreakerState, dlqKeys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		dlq := make(map[string]int64, len(dlqKeys))
		if redisStatus == "connected" {
			for _, k := range dlqKeys {
				if n, err := rdb.LLen(ctx, k).Result(); err == nil {
					dlq[k] = n
				}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":     status == http.StatusOK,
			"db":     dbStatus,
			"redis":  redisStatus,
			"mailer": mailer.State(),
			"dlq":    dlq,
		})
	}
}
