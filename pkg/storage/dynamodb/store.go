package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sam/retail-ledger/pkg/storage"
)

// DynamoDBAPI captures the subset of the DynamoDB client used by the store.
// Mocks for it are generated with mockery.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
// Accounts and transactions live in separate tables; the atomic commit
// operations span both via TransactWriteItems.
type Store struct {
	Client                DynamoDBAPI
	AccountsTableName     string
	TransactionsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, accountsTable, transactionsTable string) *Store {
	return &Store{
		Client:                client,
		AccountsTableName:     accountsTable,
		TransactionsTableName: transactionsTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Secondary indexes on the transactions table.
const (
	accountIDIndex     = "account_id-index"
	statusCreatedAtGSI = "status-created_at-index"
)

// Secondary index on the accounts table.
const accountNumberIndex = "account_number-index"
