package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/sam/retail-ledger/pkg/config"
	"github.com/sam/retail-ledger/pkg/ledger"
	"github.com/sam/retail-ledger/pkg/notify"
	"github.com/sam/retail-ledger/pkg/scheduler"
	dydbstore "github.com/sam/retail-ledger/pkg/storage/dynamodb"
)

var engine ledger.Service

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize dependencies once.
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

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	engine = ledger.NewEngine(store, sqsScheduler, notifier, logger, ledger.Config{
		DailyLimit:       cfg.DailyLimit,
		LimitWindow:      cfg.LimitWindow,
		TransferFee:      cfg.TransferFee,
		MaxCommitRetries: 3,
	})
}

// HandleRequest processes SQS activation messages and drives scheduled
// transfers through settlement.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var activation scheduler.ActivationMessage
		if err := json.Unmarshal([]byte(message.Body), &activation); err != nil {
			log.Printf("ERROR: failed to unmarshal activation from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message.
			return err
		}

		if err := engine.ActivateScheduled(ctx, activation.TransactionId); err != nil {
			log.Printf("ERROR: failed to activate transaction %s: %v", activation.TransactionId, err)
			// Persistent failures end up in the DLQ after redelivery.
			return err
		}

		log.Printf("Successfully processed activation for transaction %s", activation.TransactionId)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
