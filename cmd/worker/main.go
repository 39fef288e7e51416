package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/config"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/customers"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/db"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/job"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/jobs"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/notify"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/products"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	// The worker runs one job at a time; a couple of connections suffice.
	pool, err := db.NewPostgres(context.Background(), cfg.DatabaseURL, db.Options{MaxConns: 4, MinConns: 1})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	jobRepo := jobs.NewRepo(pool, cfg.JobMaxAttempts)

	sender := notify.NewCloudAPISender(notify.CloudAPIConfig{
		BaseURL: cfg.WhatsAppBaseURL,
		Token:   cfg.WhatsAppToken,
		PhoneID: cfg.WhatsAppPhoneID,
	})
	dispatcher := notify.NewDispatcher(customers.NewRepo(pool), products.NewRepo(pool), sender, jobRepo)

	worker := jobs.NewWorker(jobRepo, time.Duration(cfg.WorkerPollSeconds)*time.Second)
	worker.Handle(job.TypeWhatsAppSend, dispatcher.HandleJob)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.Run(ctx)
}
