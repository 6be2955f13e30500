package history

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	bolt "go.etcd.io/bbolt"

	"cbrbot/internal/entity"
)

var (
	historyBucketName = []byte("history")
)

// BoltDBRepository keeps conversions in one nested bucket per user, keyed by
// a big-endian sequence so cursor order is chronological.
type BoltDBRepository struct {
	db *bolt.DB
}

func NewBoltDB(db *bolt.DB) (*BoltDBRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucketName)
		return err
	})

	if err != nil {
		return nil, err
	}

	return &BoltDBRepository{db: db}, nil
}

func (r *BoltDBRepository) Append(conversion entity.Conversion) (entity.Conversion, error) {
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket(historyBucketName).CreateBucketIfNotExists(userKey(conversion.UserID))
		if err != nil {
			return err
		}

		id, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		conversion.ID = id

		raw, err := json.Marshal(conversion)
		if err != nil {
			return err
		}

		return bucket.Put(itob(id), raw)
	})

	if err != nil {
		return entity.Conversion{}, err
	}

	return conversion, nil
}

// Last returns up to limit conversions of the user, newest first.
func (r *BoltDBRepository) Last(userID int64, limit int) ([]entity.Conversion, error) {
	var conversions []entity.Conversion
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(historyBucketName).Bucket(userKey(userID))
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(conversions) < limit; k, v = c.Prev() {
			var conversion entity.Conversion
			if err := json.Unmarshal(v, &conversion); err != nil {
				return err
			}
			conversions = append(conversions, conversion)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return conversions, nil
}

func userKey(userID int64) []byte {
	return []byte(strconv.FormatInt(userID, 10))
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
