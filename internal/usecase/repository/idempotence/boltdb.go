package idempotence

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	idempotenceBucketName = []byte("idempotence")
)

type BoltDBRepository struct {
	db  *bolt.DB
	now func() time.Time
}

func NewBoltDB(db *bolt.DB) (*BoltDBRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(idempotenceBucketName)
		return err
	})

	if err != nil {
		return nil, err
	}

	return &BoltDBRepository{db: db, now: time.Now}, nil
}

// MakeRecord stores id with the time it was first seen.
func (t *BoltDBRepository) MakeRecord(id string) (ok bool, err error) {
	err = t.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(idempotenceBucketName)
		if bucket.Get([]byte(id)) != nil {
			ok = false
			return nil
		}

		if err := bucket.Put([]byte(id), encodeTime(t.now())); err != nil {
			return err
		}

		ok = true
		return nil
	})
	return
}

// Purge drops records first seen before the given time.
func (t *BoltDBRepository) Purge(before time.Time) (removed int, err error) {
	err = t.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(idempotenceBucketName)

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if decodeTime(v).Before(before) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		removed = len(stale)
		return nil
	})
	return
}

func encodeTime(t time.Time) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t.UnixNano()))
	return b
}

// decodeTime treats records without a timestamp as infinitely old.
func decodeTime(v []byte) time.Time {
	if len(v) != 8 {
		return time.Time{}
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(v)))
}
