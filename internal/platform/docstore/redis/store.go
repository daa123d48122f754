// Package redis keeps each document collection in a hash keyed by id, with a sorted set
// preserving creation order.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

const keyPrefix = "storefront:"

var _ docstore.Remote = (*Store)(nil)

var insertScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
return 1
`)

var updateScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

type Store struct {
	client *redis.Client
}

// Open dials the redis:// or rediss:// URI and verifies the server answers.
func Open(ctx context.Context, uri string) (*Store, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = docstore.ConnectTimeout
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, docstore.ServerSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(client), nil
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	ids, err := s.client.ZRange(ctx, indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, 0, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}
	values, err := s.client.HMGet(ctx, docsKey(collection), ids...).Result()
	if err != nil {
		return nil, err
	}
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		if filter.Matches(doc.Body) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *Store) FindOne(ctx context.Context, collection, id string) (docstore.Document, error) {
	raw, err := s.client.HGet(ctx, docsKey(collection), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return decode(raw)
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	score := doc.CreatedAt.UnixMicro()
	inserted, err := insertScript.Run(ctx, s.client,
		[]string{docsKey(collection), indexKey(collection)},
		doc.ID, string(payload), score).Int()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return docstore.ErrConflict
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection string, doc docstore.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	updated, err := updateScript.Run(ctx, s.client, []string{docsKey(collection)}, doc.ID, string(payload)).Int()
	if err != nil {
		return err
	}
	if updated == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, docsKey(collection), id)
		pipe.ZRem(ctx, indexKey(collection), id)
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	return s.client.HLen(ctx, docsKey(collection)).Result()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func docsKey(collection string) string {
	return keyPrefix + collection + ":docs"
}

func indexKey(collection string) string {
	return keyPrefix + collection + ":index"
}

func decode(raw string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return docstore.Document{}, fmt.Errorf("decode stored document: %w", err)
	}
	return doc, nil
}
