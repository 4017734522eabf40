package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The spreadsheet breaker is reported but does not fail the check: writes
// keep committing while the sheet is unreachable.
func Health(db *gorm.DB, rdb *redis.Client, sheets *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		sheetsStatus := "disabled"
		var deadSyncs int64
		if sheets != nil {
			sheetsStatus = sheets.State().String()
			if redisStatus == "connected" {
				deadSyncs, _ = worker.DeadSyncCount(ctx, rdb)
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
			"sheets": sheetsStatus,
			// rows left stale by failed syncs until the next resync
			"sheets_dead_letters": deadSyncs,
		})
	}
}
