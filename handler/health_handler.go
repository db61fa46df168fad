package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"notero/utils"
)

// HealthHandler reports service liveness plus a system snapshot. A failing
// database ping degrades the status without failing the request.
func HealthHandler(c *gin.Context, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(c, 2*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	utils.Success(c, gin.H{
		"status":   status,
		"database": dbStatus,
		"system":   utils.GetSystemSnapshot(),
	})
}
