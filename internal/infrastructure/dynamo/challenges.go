package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/quiz-kiosk-api/internal/domain"
)

// ChallengeRepo manages OTP challenges. PK: email.
type ChallengeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChallengeRepo(client *dynamodb.Client, tableName string) *ChallengeRepo {
	return &ChallengeRepo{client: client, tableName: tableName}
}

// Put stores a challenge, replacing any existing one for the same email.
func (r *ChallengeRepo) Put(ctx context.Context, c *domain.OTPChallenge) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// GetActive returns the unverified, unexpired challenge for email.
// Expiry and verified state are checked at read time; the table TTL is only
// a garbage collector, never a correctness mechanism.
func (r *ChallengeRepo) GetActive(ctx context.Context, email string) (*domain.OTPChallenge, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("challenge not found: %w", domain.ErrNotFound)
	}
	var c domain.OTPChallenge
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	if c.Verified || c.Expired(time.Now()) {
		return nil, fmt.Errorf("challenge no longer active: %w", domain.ErrNotFound)
	}
	return &c, nil
}

// MarkVerified flips the challenge to verified=true. The item is retained
// for audit; GetActive excludes it from then on.
func (r *ChallengeRepo) MarkVerified(ctx context.Context, email string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"verified": true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(email)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// PurgeExpired deletes challenges whose TTL has passed. Best-effort hygiene:
// the caller fires it asynchronously and only logs failures, since GetActive
// already filters on expiry.
func (r *ChallengeRepo) PurgeExpired(ctx context.Context) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		FilterExpression:     aws.String("expires_at <= :now"),
		ProjectionExpression: aws.String("email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Unix())},
		},
	})
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, item := range out.Items {
		v, ok := item["email"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("email", v.Value),
		}); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
