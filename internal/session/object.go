package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sogawa-yk/Galley/internal/platform/s3"
)

// ObjectClient is the object storage the ObjectStore needs.
type ObjectClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PutIfAbsent(ctx context.Context, key string, data []byte, contentType string) (bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

var _ ObjectClient = (*s3.Client)(nil)

// ObjectStore keeps sessions as JSON objects under a key prefix. Missing
// objects must be reported with s3.ErrNotFound.
type ObjectStore struct {
	client ObjectClient
	prefix string
	now    func() time.Time
}

var _ Store = (*ObjectStore)(nil)

// NewObjectStore returns a store writing below prefix.
func NewObjectStore(client ObjectClient, prefix string) *ObjectStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ObjectStore{client: client, prefix: prefix, now: time.Now}
}

func (s *ObjectStore) key(id string) string {
	return s.prefix + id + ".json"
}

// Load reads a session.
func (s *ObjectStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, s3.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decode(id, data)
}

// Save writes a session.
func (s *ObjectStore) Save(ctx context.Context, sess *Session) error {
	if err := ValidateID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}
	if err := s.client.Put(ctx, s.key(sess.ID), data, "application/json"); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	return nil
}

// List returns the ids of stored sessions in name order.
func (s *ObjectStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	var ids []string
	for _, k := range keys {
		id, ok := strings.CutSuffix(strings.TrimPrefix(k, s.prefix), ".json")
		if ok && ValidateID(id) == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
