package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/quiz-kiosk-api/internal/domain"
)

// SessionRepo manages game sessions (participation records). PK: email.
type SessionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSessionRepo(client *dynamodb.Client, tableName string) *SessionRepo {
	return &SessionRepo{client: client, tableName: tableName}
}

// Insert creates a session only if no record exists for the email yet.
// The condition is evaluated atomically by DynamoDB, so this is the
// authoritative one-play-per-email enforcement; a lost race surfaces as
// domain.ErrAlreadyPlayed.
func (r *SessionRepo) Insert(ctx context.Context, s *domain.GameSession) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("session exists for %s: %w", s.Email, domain.ErrAlreadyPlayed)
		}
		return err
	}
	return nil
}

// Get returns the session for email, or domain.ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, email string) (*domain.GameSession, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	var s domain.GameSession
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetResult records the game outcome exactly once. The condition rejects a
// second write, which surfaces as domain.ErrConflict.
func (r *SessionRepo) SetResult(ctx context.Context, email, result string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"game_result": result,
		"updated_at":  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(email) AND attribute_not_exists(game_result)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			// The condition covers both "no session" and "result already
			// set"; a read tells them apart.
			if _, getErr := r.Get(ctx, email); errors.Is(getErr, domain.ErrNotFound) {
				return getErr
			}
			return fmt.Errorf("result already recorded for %s: %w", email, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// List returns all sessions, newest first. The table is small (one row per
// kiosk participant), so a full scan is acceptable for the admin panel.
func (r *SessionRepo) List(ctx context.Context) ([]domain.GameSession, error) {
	var sessions []domain.GameSession
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.GameSession
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		sessions = append(sessions, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}
