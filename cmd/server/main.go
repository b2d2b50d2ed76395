package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"mealplanner/config"
	httpapi "mealplanner/internal/api/http"
	"mealplanner/internal/service"
	"mealplanner/internal/storage"
	"mealplanner/internal/worker"

	"github.com/tmc/langchaingo/llms/ollama"
)

func main() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres()
	defer db.Close()
	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	redisStore := storage.NewRedisStore(config.MustInitRedis())

	publisher := storage.NewKafkaPublisher(config.NewKafkaWriter(storage.OrderEventsTopic))
	defer publisher.Close()
	reader := config.NewKafkaReader(storage.OrderEventsTopic, "snapshot-worker")
	defer reader.Close()

	model, err := ollama.New(
		ollama.WithServerURL(config.Getenv("OLLAMA_URL", "http://localhost:11434")),
		ollama.WithModel(config.Getenv("OLLAMA_MODEL", "granite3-dense")),
	)
	if err != nil {
		log.Fatalf("Failed to init language model: %v", err)
	}

	accountSvc := service.NewAccountService(repo)
	restaurantSvc := service.NewRestaurantService(repo, repo, repo)
	orderSvc := service.NewOrderService(repo, repo, repo, publisher)
	reviewSvc := service.NewReviewService(repo, repo)
	analyticsSvc := service.NewAnalyticsService(repo, repo, redisStore)
	receiptSvc := service.NewReceiptService(config.Getenv("PUBLIC_BASE_URL", "http://localhost:8080"))
	generator := service.NewMenuGenerator(repo, repo, service.NewLangchainModel(model))

	genWorker := worker.NewGenerationWorker(generator, repo, redisStore)
	go genWorker.Run(ctx)

	snapWorker := worker.NewSnapshotWorker(reader, redisStore, analyticsSvc, repo)
	go snapWorker.Consume(ctx)
	go snapWorker.RunDaily(ctx)

	handler := httpapi.NewHandler(
		accountSvc, restaurantSvc, orderSvc, reviewSvc,
		analyticsSvc, genWorker, receiptSvc, redisStore,
	)

	addr := ":" + config.Getenv("PORT", "8080")
	server := &http.Server{Addr: addr, Handler: httpapi.NewRouter(handler)}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("Meal planner listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
