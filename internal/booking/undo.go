package booking

import (
	"sync"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

// undoDepth bounds how many actions an operator can step back.
const undoDepth = 10

// undoEntry pairs a booking id with the full snapshot taken just
// before a lifecycle action mutated it.
type undoEntry struct {
	bookingID string
	snapshot  models.Booking
}

// undoStack is a per-operator LIFO ring of prior snapshots. It lives
// in process memory only: undo is a best-effort session convenience,
// not a durable server-side history.
type undoStack struct {
	mu      sync.Mutex
	entries map[string][]undoEntry // operator -> stack, newest last
}

func newUndoStack() *undoStack {
	return &undoStack{entries: make(map[string][]undoEntry)}
}

func (u *undoStack) push(operator string, b *models.Booking) {
	u.mu.Lock()
	defer u.mu.Unlock()
	stack := u.entries[operator]
	stack = append(stack, undoEntry{bookingID: b.ID, snapshot: *b})
	if len(stack) > undoDepth {
		stack = stack[len(stack)-undoDepth:]
	}
	u.entries[operator] = stack
}

// pop returns the most recent snapshot for the operator, optionally
// filtered to one booking id, and removes it from the stack.
func (u *undoStack) pop(operator, bookingID string) (*models.Booking, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	stack := u.entries[operator]
	for i := len(stack) - 1; i >= 0; i-- {
		if bookingID != "" && stack[i].bookingID != bookingID {
			continue
		}
		snap := stack[i].snapshot
		u.entries[operator] = append(stack[:i], stack[i+1:]...)
		return &snap, true
	}
	return nil, false
}
