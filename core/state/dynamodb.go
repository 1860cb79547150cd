/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDBType is the type name of the DynamoDB store.
const DynamoDBType = "dynamodb"

func init() {
	RegisterFactory(dynamoFactory{})
}

// DynamoDBConfig holds the DynamoDB table settings. The table needs a string
// partition key named "key".
type DynamoDBConfig struct {
	Region string `yaml:"region"`
	Table  string `yaml:"table"`
	// Endpoint overrides the service endpoint, for LocalStack.
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// dynamoAPI is the part of *dynamodb.Client the store uses.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBStore keeps state in a DynamoDB table. Items hold the key, the JSON
// state and an optional ttl epoch for DynamoDB expiry.
type DynamoDBStore struct {
	client dynamoAPI
	table  string
	ttl    time.Duration
	now    func() time.Time
}

// NewDynamoDBStore builds a client from the default AWS config chain and
// checks that the table exists.
func NewDynamoDBStore(ctx context.Context, cfg DynamoDBConfig, ttl time.Duration) (*DynamoDBStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	var opts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	client := dynamodb.NewFromConfig(awsCfg, opts...)
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(cfg.Table)}); err != nil {
		return nil, fmt.Errorf("failed to connect to DynamoDB table %s: %w", cfg.Table, err)
	}
	log.Info().Str("table", cfg.Table).Str("region", cfg.Region).Msg("state store connected to DynamoDB")
	return newDynamoDBStore(client, cfg.Table, ttl), nil
}

func newDynamoDBStore(client dynamoAPI, table string, ttl time.Duration) *DynamoDBStore {
	return &DynamoDBStore{client: client, table: table, ttl: ttl, now: time.Now}
}

func (d *DynamoDBStore) Load(ctx context.Context, key string) (Snapshot, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if out.Item == nil {
		return Snapshot{}, ErrNotFound
	}
	// Expired items linger until DynamoDB sweeps them.
	if n, ok := out.Item["ttl"].(*types.AttributeValueMemberN); ok {
		if epoch, err := strconv.ParseInt(n.Value, 10, 64); err == nil && d.now().Unix() > epoch {
			return Snapshot{}, ErrNotFound
		}
	}
	v, ok := out.Item["state"].(*types.AttributeValueMemberS)
	if !ok {
		return Snapshot{}, fmt.Errorf("invalid state attribute for key %s", key)
	}
	return decode([]byte(v.Value))
}

func (d *DynamoDBStore) Save(ctx context.Context, key string, s Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	now := d.now()
	item := map[string]types.AttributeValue{
		"key":        &types.AttributeValueMemberS{Value: key},
		"state":      &types.AttributeValueMemberS{Value: string(data)},
		"updated_at": &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
	}
	if d.ttl > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(d.ttl).Unix(), 10)}
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(d.table), Item: item}); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (d *DynamoDBStore) Close() error {
	return nil
}

type dynamoFactory struct{}

func (dynamoFactory) Type() string { return DynamoDBType }

func (dynamoFactory) Validate(cfg Config) error {
	var errs []error
	if cfg.DynamoDB.Region == "" {
		errs = append(errs, errors.New("dynamodb.region is required"))
	}
	if cfg.DynamoDB.Table == "" {
		errs = append(errs, errors.New("dynamodb.table is required"))
	}
	return errors.Join(errs...)
}

func (dynamoFactory) Create(ctx context.Context, cfg Config) (Store, error) {
	return NewDynamoDBStore(ctx, cfg.DynamoDB, cfg.TTL)
}
