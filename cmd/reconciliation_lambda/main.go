package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/sam/retail-ledger/pkg/config"
	"github.com/sam/retail-ledger/pkg/scheduler"
	"github.com/sam/retail-ledger/pkg/storage"
	dydbstore "github.com/sam/retail-ledger/pkg/storage/dynamodb"
)

var (
	cfg          *config.Config
	store        storage.Storage
	sqsScheduler scheduler.Scheduler
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store = dydbstore.New(dbClient, cfg.AccountsTable, cfg.TransactionsTable)

	sqsClient := sqs.NewFromConfig(awsCfg)
	sqsScheduler = scheduler.NewSQSScheduler(sqsClient, cfg.QueueURL)
}

// HandleRequest is triggered by an EventBridge schedule. It re-enqueues two
// kinds of transactions: pending ones whose activation stalled, and
// scheduled ones whose delayed message was capped below the requested delay.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting reconciliation sweep...")

	stuck, err := store.GetStuckTransactions(ctx, cfg.StuckAge)
	if err != nil {
		log.Printf("ERROR: failed to get stuck transactions: %v", err)
		return err
	}

	due, err := store.GetDueScheduledTransactions(ctx)
	if err != nil {
		log.Printf("ERROR: failed to get due scheduled transactions: %v", err)
		return err
	}

	if len(stuck) == 0 && len(due) == 0 {
		log.Println("Nothing to reconcile.")
		return nil
	}

	log.Printf("Re-enqueuing %d stuck and %d due scheduled transactions...", len(stuck), len(due))

	for _, tx := range append(stuck, due...) {
		if err := sqsScheduler.ScheduleActivation(ctx, tx.Id, 0); err != nil {
			log.Printf("ERROR: failed to re-enqueue transaction %s: %v", tx.Id, err)
			// Continue to the next transaction, don't let one failure stop the whole batch.
			continue
		}
		log.Printf("Successfully re-enqueued transaction %s (%s)", tx.Id, tx.Status)
	}

	log.Println("Reconciliation sweep finished.")
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
