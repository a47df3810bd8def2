package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix = "SESSION#"
	skAlbum  = "ALBUM#"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore implements JobStore on DynamoDB.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

var _ JobStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func sessionPK(sessionID string) string { return pkPrefix + sessionID }

func albumSK(jobID string) string { return skAlbum + jobID }

func expiresAt() int64 {
	return time.Now().Add(JobTTL).Unix()
}

// putItem marshals a job and writes it with PK, SK and TTL. condition and
// values are optional.
func (s *DynamoStore) putItem(ctx context.Context, pk, sk string, data any, condition string, names map[string]string, values map[string]types.AttributeValue) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt(), 10)}

	in := &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}
	if condition != "" {
		in.ConditionExpression = aws.String(condition)
		in.ExpressionAttributeNames = names
		in.ExpressionAttributeValues = values
		in.ReturnValuesOnConditionCheckFailure = types.ReturnValuesOnConditionCheckFailureAllOld
	}

	if _, err := s.client.PutItem(ctx, in); err != nil {
		return err
	}
	return nil
}

// getItem reads one item into out. It returns false when the item does not
// exist.
func (s *DynamoStore) getItem(ctx context.Context, pk, sk string, out any) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("GetItem PK=%s SK=%s: %w", pk, sk, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal PK=%s SK=%s: %w", pk, sk, err)
	}
	return true, nil
}

// CreateAlbumJob implements JobStore.
func (s *DynamoStore) CreateAlbumJob(ctx context.Context, job *AlbumJob) error {
	now := time.Now().Unix()
	if job.CreatedAt == 0 {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusProcessing
	}

	err := s.putItem(ctx, sessionPK(job.SessionID), albumSK(job.ID), job, "attribute_not_exists(PK)", nil, nil)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("create album job %s/%s: %w", job.SessionID, job.ID, ErrJobExists)
	}
	if err != nil {
		return fmt.Errorf("create album job %s/%s: %w", job.SessionID, job.ID, err)
	}

	log.Debug().
		Str("sessionId", job.SessionID).
		Str("jobId", job.ID).
		Str("status", string(job.Status)).
		Msg("Album job created")
	return nil
}

// GetAlbumJob implements JobStore.
func (s *DynamoStore) GetAlbumJob(ctx context.Context, sessionID, jobID string) (*AlbumJob, error) {
	var job AlbumJob
	found, err := s.getItem(ctx, sessionPK(sessionID), albumSK(jobID), &job)
	if err != nil {
		return nil, fmt.Errorf("get album job %s/%s: %w", sessionID, jobID, err)
	}
	if !found {
		log.Debug().Str("sessionId", sessionID).Str("jobId", jobID).Bool("found", false).Msg("GetAlbumJob: job not found")
		return nil, nil
	}

	job.ID = jobID
	job.SessionID = sessionID
	return &job, nil
}

// UpdateAlbumJob implements JobStore. The write is conditional on the stored
// status still being processing, so concurrent writers cannot move a
// finished job.
func (s *DynamoStore) UpdateAlbumJob(ctx context.Context, job *AlbumJob) error {
	if !CanTransition(StatusProcessing, job.Status) {
		return fmt.Errorf("update album job %s: %w: to %q", job.ID, ErrInvalidTransition, job.Status)
	}
	job.UpdatedAt = time.Now().Unix()

	err := s.putItem(ctx, sessionPK(job.SessionID), albumSK(job.ID), job,
		"attribute_exists(PK) AND #status = :processing",
		map[string]string{"#status": "status"},
		map[string]types.AttributeValue{":processing": &types.AttributeValueMemberS{Value: string(StatusProcessing)}},
	)

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if ccf.Item == nil {
			return fmt.Errorf("update album job %s/%s: %w", job.SessionID, job.ID, ErrJobNotFound)
		}
		var old AlbumJob
		_ = attributevalue.UnmarshalMap(ccf.Item, &old)
		return fmt.Errorf("update album job %s/%s: %w: %s -> %s", job.SessionID, job.ID, ErrInvalidTransition, old.Status, job.Status)
	}
	if err != nil {
		return fmt.Errorf("update album job %s/%s: %w", job.SessionID, job.ID, err)
	}

	log.Debug().
		Str("sessionId", job.SessionID).
		Str("jobId", job.ID).
		Str("status", string(job.Status)).
		Int("pagesDone", job.PagesDone).
		Int("pagesTotal", job.PagesTotal).
		Msg("Album job updated")
	return nil
}
