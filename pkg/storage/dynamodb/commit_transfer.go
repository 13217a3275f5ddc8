package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sam/retail-ledger/pkg/models"
	"github.com/sam/retail-ledger/pkg/storage"
)

// Positions of the sender and receiver updates inside the commit/settle
// TransactWriteItems calls, used to map cancellation reasons onto errors.
const (
	senderOpIndex   = 0
	receiverOpIndex = 1
	debitOpIndex    = 2
	creditOpIndex   = 3
)

// CommitTransfer applies a synchronous transfer as one DynamoDB transaction:
// debit the sender, credit the receiver, and append both completed legs.
// Partial application is impossible; DynamoDB commits all four operations
// or none.
func (s *Store) CommitTransfer(ctx context.Context, debit, credit *models.Transaction) error {
	// 1. Get the current state of both accounts for optimistic locking.
	sender, err := s.GetAccount(ctx, debit.AccountId)
	if err != nil {
		return fmt.Errorf("failed to get sender's account: %w", err)
	}
	receiver, err := s.GetAccount(ctx, credit.AccountId)
	if err != nil {
		return fmt.Errorf("failed to get receiver's account: %w", err)
	}

	// 2. Marshal the transaction legs for the Put operations.
	debitAV, err := attributevalue.MarshalMap(debit)
	if err != nil {
		return fmt.Errorf("failed to marshal debit leg: %w", err)
	}
	creditAV, err := attributevalue.MarshalMap(credit)
	if err != nil {
		return fmt.Errorf("failed to marshal credit leg: %w", err)
	}

	// 3. Construct the TransactWriteItems input. The sender condition holds
	// the balance floor; the version conditions hold per-account
	// serialization against concurrent commits.
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
					ConditionExpression: aws.String("balance >= :amount AND version = :version AND #status = :active"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", debit.Amount)},
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sender.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
						":active":  &types.AttributeValueMemberS{Value: string(models.AccountActive)},
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
					ConditionExpression: aws.String("version = :version AND #status = :active"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":net":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", credit.NetAmount())},
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", receiver.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
						":active":  &types.AttributeValueMemberS{Value: string(models.AccountActive)},
					},
				},
			},
			{
				// Operation 3: Append the sender-side debit leg.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                debitAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				// Operation 4: Append the receiver-side credit leg.
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
		return s.mapCommitError(ctx, err, debit)
	}

	return nil
}

// mapCommitError translates a TransactionCanceledException into the storage
// error taxonomy based on which operation's condition failed.
func (s *Store) mapCommitError(ctx context.Context, err error, debit *models.Transaction) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return fmt.Errorf("failed to execute transfer transaction: %w", err)
	}

	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case senderOpIndex:
			// The sender condition carries both the balance floor and the
			// version check; a fresh read tells the two apart.
			sender, getErr := s.GetAccount(ctx, debit.AccountId)
			if getErr == nil && sender.Balance < debit.Amount {
				return fmt.Errorf("account %s: %w", debit.AccountId, storage.ErrInsufficientFunds)
			}
			return fmt.Errorf("account %s: %w", debit.AccountId, storage.ErrConcurrencyConflict)
		case receiverOpIndex:
			return fmt.Errorf("receiver account: %w", storage.ErrConcurrencyConflict)
		case debitOpIndex, creditOpIndex:
			return fmt.Errorf("transfer %s: %w", debit.TransferId, storage.ErrDuplicateTransactionID)
		}
	}

	return fmt.Errorf("failed to execute transfer transaction: %w", err)
}
