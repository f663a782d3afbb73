package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	healthCheckInterval = 60 * time.Second
	healthPingTimeout   = 3 * time.Second
)

// HealthStatus is the latest dependency snapshot served by the health endpoint.
// Redis is keyed by the role each client plays (cache, locks).
type HealthStatus struct {
	Mongo     bool            `json:"mongo"`
	Redis     map[string]bool `json:"redis"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the most recent snapshot. Before the first sweep
// completes it reports everything as down.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor pings Mongo and every named Redis client on a fixed
// interval, keeping the in-memory snapshot current. The first sweep runs
// immediately so the endpoint is meaningful right after startup.
func StartHealthMonitor(mongoClient *mongo.Client, redisClients map[string]*redis.Client) {
	go func() {
		sweepHealth(mongoClient, redisClients)

		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()
		for range ticker.C {
			sweepHealth(mongoClient, redisClients)
		}
	}()
}

func sweepHealth(mongoClient *mongo.Client, redisClients map[string]*redis.Client) {
	logger := GetLogger()

	status := HealthStatus{
		Redis:     make(map[string]bool, len(redisClients)),
		CheckedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Warn("mongo health check failed", zap.Error(err))
	} else {
		status.Mongo = true
	}
	cancel()

	for role, client := range redisClients {
		ctx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis health check failed", zap.String("role", role), zap.Error(err))
		} else {
			status.Redis[role] = true
		}
		cancel()
	}

	healthMu.Lock()
	currentHealth = status
	healthMu.Unlock()
}
