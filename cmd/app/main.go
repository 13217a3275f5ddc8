package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/sam/retail-ledger/pkg/config"
	"github.com/sam/retail-ledger/pkg/handlers"
	"github.com/sam/retail-ledger/pkg/ledger"
	"github.com/sam/retail-ledger/pkg/notify"
	"github.com/sam/retail-ledger/pkg/scheduler"
	dydbstore "github.com/sam/retail-ledger/pkg/storage/dynamodb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// AWS Session
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store := dydbstore.New(dbClient, cfg.AccountsTable, cfg.TransactionsTable)

	sqsClient := sqs.NewFromConfig(awsCfg)
	sqsScheduler := scheduler.NewSQSScheduler(sqsClient, cfg.QueueURL)

	var notifier notify.Publisher = &notify.NoOpPublisher{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhookPublisher(cfg.WebhookURL)
	}

	engine := ledger.NewEngine(store, sqsScheduler, notifier, logger, ledger.Config{
		DailyLimit:       cfg.DailyLimit,
		LimitWindow:      cfg.LimitWindow,
		TransferFee:      cfg.TransferFee,
		MaxCommitRetries: 3,
	})

	handler := handlers.NewApiHandler(store, engine, logger)
	router := handlers.NewRouter(handler, logger)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
