package runtime

import (
	"sync"

	"quicktalk/domain"
)

type lane struct {
	work sync.Mutex // held while the chat's work runs

	refMu   sync.Mutex
	refs    int
	retired bool
}

// Lanes serializes work per chat.
// Two calls for the same chat run one after the other, calls for different
// chats run concurrently and never share a lock. A lane exists only while
// someone uses it.
type Lanes struct {
	lanes sync.Map // domain.ChatID -> *lane
}

func NewLanes() *Lanes {
	return &Lanes{}
}

// Do runs fn while holding the lane of chatID.
func (l *Lanes) Do(chatID domain.ChatID, fn func()) {
	ln := l.acquire(chatID)
	ln.work.Lock()
	defer func() {
		ln.work.Unlock()
		l.release(chatID, ln)
	}()
	fn()
}

func (l *Lanes) acquire(chatID domain.ChatID) *lane {
	for {
		value, _ := l.lanes.LoadOrStore(chatID, &lane{})
		ln := value.(*lane)
		ln.refMu.Lock()
		if ln.retired {
			ln.refMu.Unlock()
			continue
		}
		ln.refs++
		ln.refMu.Unlock()
		return ln
	}
}

func (l *Lanes) release(chatID domain.ChatID, ln *lane) {
	ln.refMu.Lock()
	defer ln.refMu.Unlock()
	ln.refs--
	if ln.refs == 0 {
		ln.retired = true
		l.lanes.CompareAndDelete(chatID, ln)
	}
}

// Len returns the number of lanes currently in use.
func (l *Lanes) Len() int {
	count := 0
	l.lanes.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
