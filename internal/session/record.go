package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// RecordStore is the persistence port for the single session record. Read
// returns (nil, nil) when no record exists.
type RecordStore interface {
	Read(ctx context.Context) (*domain.Identity, error)
	Write(ctx context.Context, identity domain.Identity) error
	Clear(ctx context.Context) error
}

// redisRecordStore keeps the session record under a fixed Redis key.
type redisRecordStore struct {
	client *redis.Client
	key    string
}

// NewRedisRecordStore builds a Redis-backed record store.
func NewRedisRecordStore(client *redis.Client, key string) RecordStore {
	return &redisRecordStore{client: client, key: key}
}

func (s *redisRecordStore) Read(ctx context.Context) (*domain.Identity, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, util.NewStorageFailure(err)
	}
	return decodeRecord(raw)
}

func (s *redisRecordStore) Write(ctx context.Context, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return util.NewStorageFailure(err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return util.NewStorageFailure(err)
	}
	return nil
}

func (s *redisRecordStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return util.NewStorageFailure(err)
	}
	return nil
}

// fileRecordStore keeps the session record as a local JSON file.
type fileRecordStore struct {
	path string
}

// NewFileRecordStore builds a file-backed record store.
func NewFileRecordStore(path string) RecordStore {
	return &fileRecordStore{path: path}
}

func (s *fileRecordStore) Read(_ context.Context) (*domain.Identity, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, util.NewStorageFailure(err)
	}
	return decodeRecord(raw)
}

func (s *fileRecordStore) Write(_ context.Context, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return util.NewStorageFailure(err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return util.NewStorageFailure(err)
	}
	return nil
}

func (s *fileRecordStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return util.NewStorageFailure(err)
	}
	return nil
}

func decodeRecord(raw []byte) (*domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, util.NewStorageFailure(err)
	}
	// A record missing its identity core is as good as absent.
	if identity.ID == "" || identity.Email == "" {
		return nil, util.NewStorageFailure(errors.New("incomplete session record"))
	}
	if _, err := domain.ParseRole(string(identity.Role)); err != nil {
		return nil, util.NewStorageFailure(err)
	}
	return &identity, nil
}
