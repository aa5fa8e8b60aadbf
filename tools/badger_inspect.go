package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"quicktalk/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Prints the records of a QuickTalk store, e.g. -prefix msg:3: for the
// history of chat 3. Safe to run next to a live server.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "chat:", "Prefix to scan (chat:, msg:{chat_id}:, user:, member:, pair:, counter:, blacklist:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				kind, at, detail := describe(key, v)
				table.Append([]string{key, kind, at, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe renders one record, an undecodable value is shown raw.
func describe(key string, v []byte) (string, string, string) {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var m repositories.DiskMessage
		if err := json.Unmarshal(v, &m); err != nil {
			return "MESSAGE", "", fmt.Sprintf("unreadable: %v", err)
		}
		return "MESSAGE", stamp(m.At), fmt.Sprintf("#%d %s: %s", m.Seq, m.AuthorName, abbreviate(m.Content))
	case strings.HasPrefix(key, "chat:"):
		var c repositories.DiskChat
		if err := json.Unmarshal(v, &c); err != nil {
			return "CHAT", "", fmt.Sprintf("unreadable: %v", err)
		}
		return "CHAT", stamp(c.CreatedAt), fmt.Sprintf("%s %q members=%v", c.Kind, c.Name, c.Members)
	case strings.HasPrefix(key, "user:phone:"):
		return "PHONE", "", "user " + string(v)
	case strings.HasPrefix(key, "user:"):
		var u repositories.DiskUser
		if err := json.Unmarshal(v, &u); err != nil {
			return "USER", "", fmt.Sprintf("unreadable: %v", err)
		}
		return "USER", stamp(u.JoinedAt), fmt.Sprintf("%s %s", u.Username, u.PhoneNumber)
	case strings.HasPrefix(key, "counter:") && len(v) == 8:
		return "COUNTER", "", fmt.Sprint(binary.BigEndian.Uint64(v))
	case strings.HasPrefix(key, "member:"), strings.HasPrefix(key, "blacklist:"):
		return "INDEX", "", ""
	case strings.HasPrefix(key, "pair:"):
		return "PAIR", "", "chat " + string(v)
	}
	return "RAW", "", abbreviate(string(v))
}

func stamp(unixNano int64) string {
	return time.Unix(0, unixNano).UTC().Format(time.DateTime)
}

func abbreviate(s string) string {
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
