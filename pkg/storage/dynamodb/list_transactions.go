package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// ListTransactionsByAccountID retrieves the transactions owned by an account,
// optionally narrowed by status, type, and a lower creation-time bound.
func (s *Store) ListTransactionsByAccountID(ctx context.Context, accountID string, filter storage.TransactionFilter) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(accountIDIndex),
		KeyConditionExpression: aws.String("account_id = :accountID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":accountID": &types.AttributeValueMemberS{Value: accountID},
		},
	}

	// Build the filter expression from the populated filter fields.
	var conditions []string
	names := map[string]string{}

	if filter.Status != "" {
		conditions = append(conditions, "#status = :status")
		names["#status"] = "status"
		input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: string(filter.Status)}
	}
	if filter.Type != "" {
		conditions = append(conditions, "#type = :type")
		names["#type"] = "type"
		input.ExpressionAttributeValues[":type"] = &types.AttributeValueMemberS{Value: string(filter.Type)}
	}
	if !filter.Since.IsZero() {
		sinceStr, err := filter.Since.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter time: %w", err)
		}
		conditions = append(conditions, "created_at >= :since")
		input.ExpressionAttributeValues[":since"] = &types.AttributeValueMemberS{Value: string(sinceStr)}
	}

	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for transactions by account ID: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	return transactions, nil
}

// GetStuckTransactions retrieves transactions that have sat in PENDING for
// longer than maxAge. The reconciliation sweep re-enqueues these.
func (s *Store) GetStuckTransactions(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error) {
	cutoffTime := time.Now().Add(-maxAge)
	cutoffTimeStr, err := cutoffTime.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(statusCreatedAtGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		FilterExpression:       aws.String("created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PENDING)},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoffTimeStr)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stuck transactions: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stuck transactions: %w", err)
	}

	return transactions, nil
}

// GetDueScheduledTransactions retrieves SCHEDULED transactions whose
// scheduled time has arrived. Their delayed activation message was capped at
// the SQS maximum, so the reconciliation sweep re-enqueues them.
func (s *Store) GetDueScheduledTransactions(ctx context.Context) ([]models.Transaction, error) {
	nowStr, err := time.Now().MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(statusCreatedAtGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		FilterExpression:       aws.String("scheduled_at <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.SCHEDULED)},
			":now":    &types.AttributeValueMemberS{Value: string(nowStr)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for due scheduled transactions: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal due scheduled transactions: %w", err)
	}

	return transactions, nil
}
