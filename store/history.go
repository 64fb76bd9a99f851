package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const historyBucket = "history"

// Record is one stored verification outcome. Records are append-only; a new
// parse of the same document produces a new record.
type Record struct {
	ID            string    `json:"id"`
	Merchant      string    `json:"merchant"`
	Date          string    `json:"date"`
	DeclaredTotal string    `json:"declared_total"`
	ComputedTotal string    `json:"computed_total"`
	Status        string    `json:"status"`
	Confidence    int       `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryStore keeps verification records in a single bbolt bucket, keyed by
// creation time so iteration order is chronological.
type HistoryStore struct {
	db *bbolt.DB
}

func Open(path string) (*HistoryStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history bucket: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Append stores a record. CreatedAt is stamped here if unset.
func (s *HistoryStore) Append(rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		key := fmt.Sprintf("%020d-%s", rec.CreatedAt.UnixNano(), rec.ID)
		return bucket.Put([]byte(key), data)
	})
}

// List returns records newest first. A non-empty filter keeps only records
// whose merchant, date or status contains it, case-insensitively.
func (s *HistoryStore) List(filter string) ([]Record, error) {
	filter = strings.ToLower(filter)
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(historyBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling record %s: %w", k, err)
			}
			if filter != "" {
				haystack := strings.ToLower(rec.Merchant + " " + rec.Date + " " + rec.Status)
				if !strings.Contains(haystack, filter) {
					continue
				}
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get retrieves a single record by ID.
func (s *HistoryStore) Get(id string) (*Record, error) {
	var found *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(historyBucket)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !strings.HasSuffix(string(k), id) {
				continue
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			found = &rec
			return nil
		}
		return fmt.Errorf("record not found: %s", id)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}
