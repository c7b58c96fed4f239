package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoRemote stores vault documents in a DynamoDB table, one item per
// remote id.
type DynamoRemote struct {
	client    *dynamodb.Client
	tableName string
}

type dynamoItem struct {
	PK            string `dynamodbav:"PK"`
	EncryptedData string `dynamodbav:"encrypted_data"`
	LastUpdated   int64  `dynamodbav:"last_updated"`
}

// NewDynamoRemote creates a DynamoDB-backed remote using the default AWS
// credential chain.
func NewDynamoRemote(ctx context.Context, tableName, region string) (*DynamoRemote, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &DynamoRemote{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

// Put uploads the document under remoteID.
func (dr *DynamoRemote) Put(ctx context.Context, remoteID string, doc Document) error {
	av, err := attributevalue.MarshalMap(dynamoItem{
		PK:            fmt.Sprintf("VAULT#%s", remoteID),
		EncryptedData: doc.EncryptedData,
		LastUpdated:   doc.LastUpdated,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = dr.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dr.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRemoteUnavailable, err)
	}
	return nil
}

// Get fetches the document under remoteID.
func (dr *DynamoRemote) Get(ctx context.Context, remoteID string) (Document, error) {
	result, err := dr.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dr.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("VAULT#%s", remoteID)},
		},
	})
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrRemoteUnavailable, err)
	}
	if result.Item == nil {
		return Document{}, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return Document{EncryptedData: item.EncryptedData, LastUpdated: item.LastUpdated}, nil
}
