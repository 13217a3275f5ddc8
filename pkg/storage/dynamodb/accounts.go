package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// CreateAccount creates a new account record in DynamoDB.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	// Account numbers are externally unique; reject a taken number up front.
	if _, err := s.GetAccountByNumber(ctx, account.AccountNumber); err == nil {
		return nil, fmt.Errorf("account number %s: %w", account.AccountNumber, storage.ErrAccountExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if account.Id == "" {
		account.Id = uuid.New().String()
	}
	account.Status = models.AccountActive
	account.Version = 1
	account.CreatedAt = time.Now()

	accountAV, err := attributevalue.MarshalMap(account)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.AccountsTableName),
		Item:                accountAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("account %s: %w", account.Id, storage.ErrAccountExists)
		}
		return nil, fmt.Errorf("failed to create account in DynamoDB: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account from DynamoDB by its id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account id: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// GetAccountByNumber retrieves an account by its external account number.
func (s *Store) GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.AccountsTableName),
		IndexName:              aws.String(accountNumberIndex),
		KeyConditionExpression: aws.String("account_number = :number"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":number": &types.AttributeValueMemberS{Value: accountNumber},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query account by number: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("account number %s: %w", accountNumber, storage.ErrNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Items[0], &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// ListAccounts retrieves all accounts from DynamoDB.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.AccountsTableName),
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts table: %w", err)
	}

	var accounts []models.Account
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}

	return accounts, nil
}

// CloseAccount marks an account as closed. Closed accounts remain in the
// table as the durable record of their transaction history.
func (s *Store) CloseAccount(ctx context.Context, accountID string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: accountID},
		},
		UpdateExpression:    aws.String("SET #status = :closed, version = version + :inc"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status <> :closed"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":closed": &types.AttributeValueMemberS{Value: string(models.AccountClosed)},
			":inc":    &types.AttributeValueMemberN{Value: "1"},
		},
	}

	_, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("account %s: %w", accountID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to close account in DynamoDB: %w", err)
	}

	return nil
}
