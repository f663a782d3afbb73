package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"slotwise/config"
	"slotwise/models"
	"slotwise/services/generator"
	"slotwise/services/impact"
	"slotwise/services/notification"
	"slotwise/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitTaskWorker runs the async worker in background. It drains the queued
// background work: bulk slot generation, availability-change reprocessing
// and outbound notifications.
func InitTaskWorker(gen generator.GeneratorService, analyzer impact.Analyzer, sender notification.Sender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeGenerateSlots, handleGenerateTask(gen))
	mux.HandleFunc(tasks.TypeReprocess, handleReprocessTask(analyzer))
	mux.HandleFunc(tasks.TypeSendNotify, handleNotifyTask(sender))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[TaskWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[TaskWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[TaskWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleGenerateTask(gen generator.GeneratorService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.GeneratePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[GenerateHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		n, err := gen.GenerateForService(ctx, p.ServiceID, p.HorizonStart, p.HorizonEnd)
		if err != nil {
			log.Printf("[GenerateHandler] ❌ Generation failed for service %s: %v", p.ServiceID, err)
			return err
		}
		log.Printf("[GenerateHandler] 📅 Generated %d slots for service %s (%s..%s)", n, p.ServiceID, p.HorizonStart, p.HorizonEnd)
		return nil
	}
}

func handleReprocessTask(analyzer impact.Analyzer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReprocessPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReprocessHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		if err := analyzer.ReprocessAffected(ctx, p.ServiceID, p.Actor); err != nil {
			log.Printf("[ReprocessHandler] ❌ Reprocessing failed for service %s: %v", p.ServiceID, err)
			return err
		}
		return nil
	}
}

func handleNotifyTask(sender notification.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotifyPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotifyHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		if err := sender.Send(ctx, p); err != nil {
			log.Printf("[NotifyHandler] ❌ Failed to send notification: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[TaskWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
