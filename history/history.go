package history

import (
	"encoding/json"
	"sort"
	"time"

	"pyro/logger"

	"git.mills.io/prologic/bitcask"
	"github.com/google/uuid"
)

// Record is one completed generation. RawPrompt is what the user
// typed, ResolvedPrompt is what was actually sent to the image
// backend after variable substitution and enhancement.
type Record struct {
	ID             string    `json:"id"`
	RawPrompt      string    `json:"raw_prompt"`
	ResolvedPrompt string    `json:"resolved_prompt"`
	Seed           uint32    `json:"seed"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	ImagePath      string    `json:"image_path"`
	CreatedAt      time.Time `json:"created_at"`
}

type Store struct {
	db *bitcask.Bitcask
}

func Open(path string) (*Store, error) {
	// Increase the maximum value size to 10MB (from the default 65KB)
	db, err := bitcask.Open(path, bitcask.WithMaxValueSize(10*1024*1024))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Merge reclaims space from overwritten and deleted entries.
func (s *Store) Merge() error {
	return s.db.Merge()
}

// Put stores a record, assigning an ID and timestamp when missing,
// and returns the stored record.
func (s *Store) Put(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}
	compressedValue, err := compress(data)
	if err != nil {
		return Record{}, err
	}
	if err := s.db.Put(cacheKey(rec.ID), compressedValue); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns up to limit records, newest first. A limit of zero or
// less returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record
	for key := range s.db.Keys() {
		compressedValue, err := s.db.Get(key)
		if err != nil {
			logger.Warn("Skipping unreadable history entry", "error", err)
			continue
		}
		data, err := decompress(compressedValue)
		if err != nil {
			logger.Warn("Skipping corrupt history entry", "error", err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			logger.Warn("Skipping undecodable history entry", "error", err)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
