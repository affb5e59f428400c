package snapshot

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rohankatakam/graphscope/internal/errors"
)

const bucketName = "snapshots"

// BoltStore keeps blobs in a single bbolt bucket
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the snapshot database at path.
// Read-only handles share the file with other readers.
func OpenBolt(path string, readOnly bool) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout:  5 * time.Second,
		ReadOnly: readOnly,
	})
	if err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to open snapshot database %s", path)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database
func (b *BoltStore) Close() error {
	return b.db.Close()
}

// Read implements Source. The returned slice is a copy and stays valid after the transaction.
func (b *BoltStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return errors.NotFoundf("snapshot %q not found: bucket %s missing", key, bucketName)
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return errors.NotFoundf("snapshot %q not found", key)
		}
		out = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Write implements Writer
func (b *BoltStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return errors.FileSystemErrorf(err, "failed to store snapshot %q", key)
	}
	return nil
}

// Keys lists stored blob keys in byte order
func (b *BoltStore) Keys() ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
