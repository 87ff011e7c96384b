package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/carepoint-health/carepoint-client/internal/constants"
)

// NATSStore keeps credentials in a JetStream key/value bucket.
type NATSStore struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// DialNATSStore connects to url and binds the bucket, creating it if needed.
func DialNATSStore(url, bucket string) (*NATSStore, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(url, nats.Name("carepoint-client"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "carepoint credentials",
			History:     1,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding key/value bucket %q: %w", bucket, err)
	}

	return &NATSStore{conn: conn, kv: kv}, nil
}

// Get returns the value for key, or "" when absent.
func (s *NATSStore) Get(_ context.Context, key string) (string, error) {
	entry, err := s.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("getting credential[%s]: %w", key, err)
	}

	return string(entry.Value()), nil
}

// Set stores value under key.
func (s *NATSStore) Set(_ context.Context, key, value string) error {
	if _, err := s.kv.PutString(key, value); err != nil {
		return fmt.Errorf("setting credential[%s]: %w", key, err)
	}

	return nil
}

// MultiRemove deletes every key, continuing past failures.
func (s *NATSStore) MultiRemove(_ context.Context, keys ...string) error {
	var errs []error

	for _, key := range keys {
		if err := s.kv.Delete(key); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			errs = append(errs, fmt.Errorf("deleting credential[%s]: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

// Close drains the connection.
func (s *NATSStore) Close() error {
	return s.conn.Drain()
}
