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
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// AppendTransaction writes a single transaction record with no balance
// effect. It is used for SCHEDULED entries and for FAILED records written
// after a precondition rejection.
func (s *Store) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.TransactionsTableName),
		Item:                txAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("transaction %s: %w", tx.Id, storage.ErrDuplicateTransactionID)
		}
		return fmt.Errorf("failed to append transaction to DynamoDB: %w", err)
	}

	return nil
}

// UpdateTransactionStatus transitions a transaction from one status to
// another. The stored status must match the expected current status, which
// is enforced server-side so concurrent writers cannot race past each other.
func (s *Store) UpdateTransactionStatus(ctx context.Context, txID string, from, to models.TransactionStatus, note string) error {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	update := "SET #status = :to, updated_at = :now"
	values := map[string]types.AttributeValue{
		":to":   &types.AttributeValueMemberS{Value: string(to)},
		":from": &types.AttributeValueMemberS{Value: string(from)},
		":now":  nowAV,
	}
	if note != "" {
		update += ", status_note = :note"
		values[":note"] = &types.AttributeValueMemberS{Value: note}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID},
		},
		UpdateExpression:    aws.String(update),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: values,
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("transaction %s is not %s: %w", txID, from, storage.ErrInvalidTransition)
		}
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	return nil
}
