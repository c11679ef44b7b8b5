//go:generate go run go.uber.org/mock/mockgen -source=summary.go -destination=../mocks/mock_summary_repository.go -package=mocks
package repositories

import (
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const summaryPrefix = "summary:"

type ISummaryRepository interface {
	GetSummary(textHash string) (string, bool, error)
	StoreSummary(textHash, summary string) error
}

type SummaryRepository struct {
	db  *badger.DB
	log *slog.Logger
	ttl time.Duration
}

// NewSummaryRepository caches summaries in Badger. A zero ttl keeps entries forever.
func NewSummaryRepository(db *badger.DB, log *slog.Logger, ttl time.Duration) SummaryRepository {
	return SummaryRepository{db: db, log: log, ttl: ttl}
}

// CachedSummary is one cache entry as seen by the inspection tool.
type CachedSummary struct {
	TextHash  string
	Summary   string
	ExpiresAt time.Time
}

// StoreSummary writes the summary under "summary:{sha256 of cleaned text}".
func (s SummaryRepository) StoreSummary(textHash, summary string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(summaryPrefix+textHash), []byte(summary))
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// GetSummary returns false when nothing is cached or the entry has expired.
func (s SummaryRepository) GetSummary(textHash string) (string, bool, error) {
	var summary string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(summaryPrefix + textHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			summary = string(val)
			return nil
		})
	})

	switch {
	case goerrors.Is(err, badger.ErrKeyNotFound):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("read summary %s: %w", textHash, err)
	}
	s.log.Debug("Summary cache hit", "hash", textHash)
	return summary, true, nil
}

// ListSummaries scans every live entry with the summary prefix.
func (s SummaryRepository) ListSummaries() ([]CachedSummary, error) {
	var summaries []CachedSummary
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(summaryPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			cached := CachedSummary{
				TextHash: strings.TrimPrefix(string(item.Key()), summaryPrefix),
				Summary:  string(val),
			}
			if expiresAt := item.ExpiresAt(); expiresAt > 0 {
				cached.ExpiresAt = time.Unix(int64(expiresAt), 0).UTC()
			}
			summaries = append(summaries, cached)
		}
		return nil
	})
	return summaries, err
}
