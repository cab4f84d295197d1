package jsop

import (
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// bucketName is the single bbolt bucket jsop stores all records in.
// Records are flat (no nested buckets) because the tree structure
// already lives in the address components, not in bucket nesting.
var bucketName = []byte("jsop")

// OpenBBolt opens (or creates) a bbolt-backed DBM at path. This is the
// module's default embedded store: a single-file, single-writer B+tree
// engine, matching the "any DBM with byte-keyed get/put/delete/iterate
// and create/read/write open modes" contract of spec.md §4.1/§6.
func OpenBBolt(path string, mode OpenMode) (DBM, error) {
	switch mode {
	case CreateNew:
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("jsop: removing existing file %s: %w", path, err)
		}
		db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, err
		}
		if err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketName)
			return err
		}); err != nil {
			db.Close()
			return nil, err
		}
		return &bboltDBM{db: db}, nil

	case ReadWrite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("jsop: opening %s: %w", path, err)
		}
		db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, err
		}
		if err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketName)
			return err
		}); err != nil {
			db.Close()
			return nil, err
		}
		return &bboltDBM{db: db}, nil

	case ReadOnly:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("jsop: opening %s: %w", path, err)
		}
		db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second, ReadOnly: true})
		if err != nil {
			return nil, err
		}
		return &bboltDBM{db: db, readOnly: true}, nil

	default:
		return nil, fmt.Errorf("jsop: unknown open mode %d", mode)
	}
}

type bboltDBM struct {
	db       *bolt.DB
	readOnly bool
}

func (b *bboltDBM) Get(key []byte) (value []byte, found bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		v := bucket.Get(key)
		if v != nil {
			found = true
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return
}

func (b *bboltDBM) Put(key, value []byte) error {
	if b.readOnly {
		return fmt.Errorf("%w: bbolt store opened read-only", ErrNotWritable)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

func (b *bboltDBM) Delete(key []byte) (found bool, err error) {
	if b.readOnly {
		return false, fmt.Errorf("%w: bbolt store opened read-only", ErrNotWritable)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		if bucket.Get(key) == nil {
			return nil
		}
		found = true
		return bucket.Delete(key)
	})
	return
}

func (b *bboltDBM) ForEach(fn func(key []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			return fn(append([]byte(nil), k...))
		})
	})
}

func (b *bboltDBM) Close() error {
	return b.db.Close()
}
