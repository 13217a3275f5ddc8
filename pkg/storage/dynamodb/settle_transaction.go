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

// SettleTransaction finalizes a transfer whose debit leg already exists as
// PENDING: the debit leg moves to COMPLETED, the credit leg is appended, and
// both balances are adjusted within one DynamoDB transaction. The credit
// Put is conditional on its deterministic id, so a duplicate settlement
// attempt cannot create the mirrored leg twice.
func (s *Store) SettleTransaction(ctx context.Context, debit, credit *models.Transaction) error {
	// 1. Get the current state of both accounts for optimistic locking.
	sender, err := s.GetAccount(ctx, debit.AccountId)
	if err != nil {
		return fmt.Errorf("failed to get sender's account for settlement: %w", err)
	}
	receiver, err := s.GetAccount(ctx, credit.AccountId)
	if err != nil {
		return fmt.Errorf("failed to get receiver's account for settlement: %w", err)
	}

	// 2. Prepare the credit leg and the completion timestamp.
	now := time.Now()
	creditAV, err := attributevalue.MarshalMap(credit)
	if err != nil {
		return fmt.Errorf("failed to marshal credit leg: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement timestamp: %w", err)
	}

	// 3. Construct the TransactWriteItems input.
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Debit the sender's account by the full amount.
				Update: &types.Update{
					TableName: aws.String(s.AccountsTableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: sender.Id},
					},
					UpdateExpression:    aws.String("SET balance = balance - :amount, version = version + :inc"),
					ConditionExpression: aws.String("balance >= :amount AND version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", debit.Amount)},
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sender.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				// Operation 2: Credit the receiver's account by the net amount.
				Update: &types.Update{
					TableName: aws.String(s.AccountsTableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: receiver.Id},
					},
					UpdateExpression:    aws.String("SET balance = balance + :net, version = version + :inc"),
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":net":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", credit.NetAmount())},
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", receiver.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				// Operation 3: Transition the debit leg from PENDING to COMPLETED.
				Update: &types.Update{
					TableName: aws.String(s.TransactionsTableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: debit.Id},
					},
					UpdateExpression:    aws.String("SET #status = :completed, completed_at = :now, updated_at = :now"),
					ConditionExpression: aws.String("#status = :pending"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":completed": &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
						":pending":   &types.AttributeValueMemberS{Value: string(models.PENDING)},
						":now":       nowAV,
					},
				},
			},
			{
				// Operation 4: Append the receiver-side credit leg exactly once.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                creditAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	// 4. Execute the transaction and map the cancellation reasons.
	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		return s.mapSettleError(ctx, err, debit)
	}

	return nil
}

// mapSettleError translates a TransactionCanceledException from the
// settlement transaction into the storage error taxonomy.
func (s *Store) mapSettleError(ctx context.Context, err error, debit *models.Transaction) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return fmt.Errorf("failed to execute settlement transaction: %w", err)
	}

	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case senderOpIndex:
			sender, getErr := s.GetAccount(ctx, debit.AccountId)
			if getErr == nil && sender.Balance < debit.Amount {
				return fmt.Errorf("account %s: %w", debit.AccountId, storage.ErrInsufficientFunds)
			}
			return fmt.Errorf("account %s: %w", debit.AccountId, storage.ErrConcurrencyConflict)
		case receiverOpIndex:
			return fmt.Errorf("receiver account: %w", storage.ErrConcurrencyConflict)
		case debitOpIndex:
			return fmt.Errorf("transaction %s is not pending: %w", debit.Id, storage.ErrInvalidTransition)
		case creditOpIndex:
			return fmt.Errorf("transfer %s credit leg: %w", debit.TransferId, storage.ErrDuplicateTransactionID)
		}
	}

	return fmt.Errorf("failed to execute settlement transaction: %w", err)
}
