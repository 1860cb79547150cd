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
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/tables"
)

func sample() Snapshot {
	return Snapshot{
		Sort:      []tables.SortKey{{Column: "amount", Field: "amount", Direction: tables.Descending}},
		Filters:   []tables.FilterSnapshot{{Field: "client", Kind: tables.FilterContains, Value: "acme"}},
		PageIndex: 2,
		PageSize:  25,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "tabula:state:ana:contracts", Key("ana", "contracts"))
	assert.Equal(t, "tabula:state:anonymous:contracts", Key("", "contracts"))
	assert.Equal(t, "tabula:state:a_b:kpis", Key("a:b", "kpis"))
}

func TestMemoryStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Load(ctx, "k")
	require.ErrorIs(err, ErrNotFound)

	require.NoError(m.Save(ctx, "k", sample()))
	got, err := m.Load(ctx, "k")
	require.NoError(err)
	require.Equal(sample(), got)

	now = now.Add(2 * time.Minute)
	_, err = m.Load(ctx, "k")
	require.ErrorIs(err, ErrNotFound)

	require.NoError(m.Close())
	require.ErrorIs(m.Save(ctx, "k", sample()), ErrClosed)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	s, err := Create(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Create(ctx, Config{Type: "etcd"})
	assert.ErrorContains(t, err, "unsupported state store type")

	_, err = Create(ctx, Config{Type: RedisType})
	assert.ErrorContains(t, err, "redis.addr is required")

	_, err = Create(ctx, Config{Type: DynamoDBType})
	assert.ErrorContains(t, err, "dynamodb.region is required")
	assert.ErrorContains(t, err, "dynamodb.table is required")

	assert.Equal(t, []string{DynamoDBType, MemoryType, RedisType}, RegisteredTypes())
	assert.Panics(t, func() { RegisterFactory(memoryFactory{}) })
}

type fakeRedis struct {
	data map[string]string
	ttl  time.Duration
	err  error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttl = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error { return nil }

func TestRedisStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	fake := &fakeRedis{data: map[string]string{}}
	r := &RedisStore{client: fake, ttl: time.Hour}

	_, err := r.Load(ctx, "k")
	require.ErrorIs(err, ErrNotFound)

	require.NoError(r.Save(ctx, "k", sample()))
	require.Equal(time.Hour, fake.ttl)
	require.JSONEq(`{"sort":[{"column":"amount","field":"amount","direction":"desc"}],"filters":[{"field":"client","kind":"contains","value":"acme"}],"page":2,"size":25}`, fake.data["k"])

	got, err := r.Load(ctx, "k")
	require.NoError(err)
	require.Equal(sample(), got)

	fake.err = errors.New("connection refused")
	_, err = r.Load(ctx, "k")
	require.ErrorContains(err, "connection refused")
	require.NotErrorIs(err, ErrNotFound)
}

type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	key := in.Key["key"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[key]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key := in.Item["key"].(*types.AttributeValueMemberS).Value
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoDBStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
	d := newDynamoDBStore(fake, "tabula-state", time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	_, err := d.Load(ctx, "k")
	require.ErrorIs(err, ErrNotFound)

	require.NoError(d.Save(ctx, "k", sample()))
	ttl := fake.items["k"]["ttl"].(*types.AttributeValueMemberN).Value
	require.Equal(strconv.FormatInt(now.Add(time.Hour).Unix(), 10), ttl)

	got, err := d.Load(ctx, "k")
	require.NoError(err)
	require.Equal(sample(), got)

	now = now.Add(2 * time.Hour)
	_, err = d.Load(ctx, "k")
	require.ErrorIs(err, ErrNotFound)
}
