package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// openTestDB opens a Badger database in a temporary directory.
// Value log files are reduced to 16 Mo for testing.
func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
