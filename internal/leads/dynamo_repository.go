package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepository.
type DynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type dynamoLead struct {
	LeadID     string            `dynamodbav:"leadId"`
	Type       string            `dynamodbav:"type"`
	Email      string            `dynamodbav:"email"`
	FullName   string            `dynamodbav:"fullName"`
	Company    string            `dynamodbav:"company,omitempty"`
	Consent    bool              `dynamodbav:"consent"`
	Fields     map[string]string `dynamodbav:"fields"`
	FieldsJSON string            `dynamodbav:"fieldsJson"`
	ReceivedAt string            `dynamodbav:"receivedAt"`
	ExpiresAt  int64             `dynamodbav:"expiresAt,omitempty"`
}

// DynamoRepository stores submissions as DynamoDB items keyed by leadId.
type DynamoRepository struct {
	client DynamoAPI
	table  string
	ttl    time.Duration
}

// NewDynamoRepository creates a DynamoDB-backed recorder.
func NewDynamoRepository(client DynamoAPI, table string, ttl time.Duration) *DynamoRepository {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if strings.TrimSpace(table) == "" {
		panic("leads: dynamodb table cannot be empty")
	}
	return &DynamoRepository{client: client, table: table, ttl: ttl}
}

// Record puts the submission item.
func (r *DynamoRepository) Record(ctx context.Context, sub *Submission) error {
	fieldsJSON, err := json.Marshal(sub.Fields)
	if err != nil {
		return fmt.Errorf("leads: marshal fields: %w", err)
	}
	flat := make(map[string]string, sub.Fields.Len())
	for _, key := range sub.Fields.Keys() {
		v, _ := sub.Fields.Get(key)
		flat[key] = strings.Join(v.Strings(), ", ")
	}
	item := dynamoLead{
		LeadID:     sub.ID,
		Type:       string(sub.Type),
		Email:      sub.Email(),
		FullName:   sub.FullName(),
		Company:    sub.Company(),
		Consent:    sub.Consent(),
		Fields:     flat,
		FieldsJSON: string(fieldsJSON),
		ReceivedAt: sub.ReceivedAt.UTC().Format(time.RFC3339),
	}
	if r.ttl > 0 {
		item.ExpiresAt = sub.ReceivedAt.Add(r.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("leads: marshal dynamodb item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(leadId)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil
		}
		return fmt.Errorf("leads: dynamodb put: %w", err)
	}
	return nil
}

// GetByID loads a stored submission.
func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"leadId": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("leads: dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrLeadNotFound
	}
	var item dynamoLead
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("leads: unmarshal dynamodb item: %w", err)
	}
	sub := &Submission{ID: item.LeadID, Type: Type(item.Type)}
	if err := json.Unmarshal([]byte(item.FieldsJSON), &sub.Fields); err != nil {
		return nil, fmt.Errorf("leads: decode fields: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, item.ReceivedAt); err == nil {
		sub.ReceivedAt = ts
	}
	return sub, nil
}

var _ Recorder = (*DynamoRepository)(nil)
