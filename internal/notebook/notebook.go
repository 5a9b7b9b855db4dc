// Package notebook keeps the learner's annotations: the set of items flagged
// as weaknesses and free-text memos per item.
package notebook

import (
	"sort"
	"strings"

	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/store"
)

// Notebook holds the weakness set and memos. Every mutation writes the
// affected entry to the sink.
type Notebook struct {
	weak  map[int]bool
	memos map[int]string
	sink  persist.Sink
}

// New creates a notebook from persisted state.
func New(weaknesses []int, memos map[int]string, sink persist.Sink) *Notebook {
	if sink == nil {
		sink = persist.Discard
	}
	n := &Notebook{
		weak:  make(map[int]bool, len(weaknesses)),
		memos: make(map[int]string, len(memos)),
		sink:  sink,
	}
	for _, id := range weaknesses {
		n.weak[id] = true
	}
	for id, text := range memos {
		if strings.TrimSpace(text) != "" {
			n.memos[id] = text
		}
	}
	return n
}

// Flag adds id to the weakness set. It returns false if it was already flagged.
func (n *Notebook) Flag(id int) bool {
	if n.weak[id] {
		return false
	}
	n.weak[id] = true
	n.saveWeaknesses()
	return true
}

// Unflag removes id from the weakness set. It returns false if it was not flagged.
func (n *Notebook) Unflag(id int) bool {
	if !n.weak[id] {
		return false
	}
	delete(n.weak, id)
	n.saveWeaknesses()
	return true
}

// Toggle flips id's membership and reports whether it is now flagged.
func (n *Notebook) Toggle(id int) bool {
	if n.weak[id] {
		n.Unflag(id)
		return false
	}
	n.Flag(id)
	return true
}

// Contains reports whether id is flagged.
func (n *Notebook) Contains(id int) bool {
	return n.weak[id]
}

// IDs returns the flagged ids in ascending order.
func (n *Notebook) IDs() []int {
	ids := make([]int, 0, len(n.weak))
	for id := range n.weak {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (n *Notebook) saveWeaknesses() {
	n.sink.Put(store.KeyWeaknesses, n.IDs())
}

// SetMemo stores text for id. Blank text deletes the memo.
func (n *Notebook) SetMemo(id int, text string) {
	if strings.TrimSpace(text) == "" {
		if _, ok := n.memos[id]; !ok {
			return
		}
		delete(n.memos, id)
	} else {
		n.memos[id] = text
	}
	n.sink.Put(store.KeyMemos, n.Memos())
}

// Memo returns the memo for id, or "".
func (n *Notebook) Memo(id int) string {
	return n.memos[id]
}

// Memos returns a copy of all non-empty memos.
func (n *Notebook) Memos() map[int]string {
	out := make(map[int]string, len(n.memos))
	for id, text := range n.memos {
		out[id] = text
	}
	return out
}

// MemoIDs returns the ids that have a memo, ascending.
func (n *Notebook) MemoIDs() []int {
	ids := make([]int, 0, len(n.memos))
	for id := range n.memos {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
