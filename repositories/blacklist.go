package repositories

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const blacklistPrefix = "blacklist:"

// BlacklistRepository stores the words masked by the moderator.
// Words live in the keys, values are empty.
type BlacklistRepository struct {
	db *badger.DB
}

func NewBlacklistRepository(db *badger.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// Add stores the words, lower cased. Blank words are skipped.
func (r *BlacklistRepository) Add(words ...string) error {
	wb := r.db.NewWriteBatch()
	defer wb.Cancel()
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if err := wb.Set([]byte(blacklistPrefix+word), nil); err != nil {
			return storeError(err)
		}
	}
	return storeError(wb.Flush())
}

// Words lists every stored word in key order.
func (r *BlacklistRepository) Words() ([]string, error) {
	var words []string
	err := view(r.db, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(blacklistPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return words, err
}
