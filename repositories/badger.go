package repositories

import (
	"encoding/binary"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"quicktalk/errors"

	"github.com/dgraph-io/badger/v4"
)

// maxConflictRetries bounds how many times a transaction is replayed
// when Badger reports a write conflict with a concurrent transaction.
const maxConflictRetries = 32

// update runs fn in a read-write transaction, replaying it on conflict.
// Errors that are not domain errors are wrapped as transient store failures.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			break
		}
	}
	return storeError(err)
}

func view(db *badger.DB, fn func(txn *badger.Txn) error) error {
	return storeError(db.View(fn))
}

// storeError keeps domain errors untouched and flags everything else
// coming from Badger as a transient failure the caller may retry.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errors.ErrNotFound),
		stderrors.Is(err, errors.ErrValidation),
		stderrors.Is(err, errors.ErrPersonalChatExists),
		stderrors.Is(err, errors.ErrAlreadyMember),
		stderrors.Is(err, errors.ErrNotGroupChat),
		stderrors.Is(err, errors.ErrUserAlreadyExists):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrTransientStore, err)
	}
}

// nextCounter increments the counter stored under key inside txn.
// Two transactions incrementing the same counter conflict, so the value
// handed out is unique once the transaction commits.
func nextCounter(txn *badger.Txn, key string) (uint64, error) {
	var current uint64
	item, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		if err = item.Value(func(val []byte) error {
			current = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	case stderrors.Is(err, badger.ErrKeyNotFound):
	default:
		return 0, err
	}
	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err = txn.Set([]byte(key), buf); err != nil {
		return 0, err
	}
	return next, nil
}

func getJSON(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key string, in any) error {
	bytes, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), bytes)
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}
