package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/compress"
	"github.com/emrgen/content/internal/model"
)

const publishedVersionHash = "published:version"

func publishedKey(id string) string {
	return "published:" + id
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

var _ PublicationCache = (*RedisPublicationCache)(nil)

type RedisPublicationCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

func NewRedisPublicationCache(opts RedisOptions) *RedisPublicationCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		Protocol: 2,
	})

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisPublicationCache{client: client, encoder: compress.NewGZip(), ttl: ttl}
}

func (r *RedisPublicationCache) GetPublished(ctx context.Context, contentID uuid.UUID) (*model.PublishedContent, error) {
	res := r.client.Get(ctx, publishedKey(contentID.String()))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	buf, err = r.encoder.Decode(buf)
	if err != nil {
		return nil, err
	}

	published := &model.PublishedContent{}
	if err := json.Unmarshal(buf, published); err != nil {
		return nil, err
	}

	return published, nil
}

func (r *RedisPublicationCache) SetPublished(ctx context.Context, published *model.PublishedContent) error {
	marshal, err := json.Marshal(published)
	if err != nil {
		return err
	}

	encoded, err := r.encoder.Encode(marshal)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Set(ctx, publishedKey(published.ContentID), encoded, r.ttl).Err(); err != nil {
			return err
		}

		if err := p.HSet(ctx, publishedVersionHash, published.ContentID, published.ShaPublic).Err(); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		logrus.Errorf("failed to cache published content %s: %v", published.ContentID, err)
	}

	return err
}

func (r *RedisPublicationCache) DeletePublished(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Del(ctx, publishedKey(contentID.String())).Err(); err != nil {
			return err
		}
		return p.HDel(ctx, publishedVersionHash, contentID.String()).Err()
	})
	return err
}

// Close releases the redis connections.
func (r *RedisPublicationCache) Close() error {
	return r.client.Close()
}
