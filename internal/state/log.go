package state

import (
	"container/list"
	"fmt"
	"log/slog"
	"sync"
)

// Log is the ordered action history of one room plus its redo stack.
//
// Both sequences are linked lists indexed by id, so id-targeted moves are
// O(1). Every id is unique across the log and the redo stack combined.
// Methods named after remote notices (Receive, RemoveByID, Insert) are
// idempotent per id.
type Log struct {
	mu sync.RWMutex

	actions *list.List // of Action, replay order
	redo    *list.List // of Action, most recently undone last

	inLog  map[string]*list.Element
	inRedo map[string]*list.Element

	// redoLimit caps the redo stack; 0 means unbounded.
	redoLimit int

	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		actions: list.New(),
		redo:    list.New(),
		inLog:   make(map[string]*list.Element),
		inRedo:  make(map[string]*list.Element),
		logger:  logger.With("component", "log"),
	}
}

func (l *Log) known(id string) bool {
	_, a := l.inLog[id]
	_, r := l.inRedo[id]
	return a || r
}

func (l *Log) pushLog(a Action) {
	l.inLog[a.ID] = l.actions.PushBack(a)
}

func (l *Log) pushRedo(a Action) {
	l.inRedo[a.ID] = l.redo.PushBack(a)
	for l.redoLimit > 0 && l.redo.Len() > l.redoLimit {
		old := l.takeRedo(l.redo.Front())
		l.logger.Debug("redo entry dropped", "id", old.ID)
	}
}

// LimitRedo keeps at most n undone actions, dropping the oldest first. A
// later redo notice for a dropped id is still accepted by Insert.
func (l *Log) LimitRedo(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redoLimit = max(n, 0)
	for l.redoLimit > 0 && l.redo.Len() > l.redoLimit {
		l.takeRedo(l.redo.Front())
	}
}

func (l *Log) takeLog(e *list.Element) Action {
	a := l.actions.Remove(e).(Action)
	delete(l.inLog, a.ID)
	return a
}

func (l *Log) takeRedo(e *list.Element) Action {
	a := l.redo.Remove(e).(Action)
	delete(l.inRedo, a.ID)
	return a
}

func (l *Log) clearRedo() {
	l.redo.Init()
	clear(l.inRedo)
}

// Append commits a new local action at the tail and clears the redo stack.
func (l *Log) Append(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.known(a.ID) {
		return fmt.Errorf("append %s: %w", a.ID, ErrDuplicateID)
	}
	l.pushLog(a.clone())
	l.clearRedo()
	l.logger.Debug("local action appended", "id", a.ID, "tool", a.Tool, "len", l.actions.Len())
	return nil
}

// Receive applies a new action broadcast by another participant. Known ids
// are ignored and the redo stack is left alone.
func (l *Log) Receive(a Action) bool {
	if err := a.Validate(); err != nil {
		l.logger.Warn("remote action rejected", "id", a.ID, "err", err)
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.known(a.ID) {
		l.logger.Debug("remote action already applied, ignoring", "id", a.ID)
		return false
	}
	l.pushLog(a.clone())
	l.logger.Debug("remote action added", "id", a.ID, "author", a.Author)
	return true
}

// UndoLast moves the last appended action onto the redo stack.
func (l *Log) UndoLast() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.actions.Back()
	if e == nil {
		return Action{}, false
	}
	a := l.takeLog(e)
	l.pushRedo(a)
	return a, true
}

// RedoLast moves the most recently undone action back to the log tail.
func (l *Log) RedoLast() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.redo.Back()
	if e == nil {
		return Action{}, false
	}
	a := l.takeRedo(e)
	l.pushLog(a)
	return a, true
}

// UndoLastBy undoes the newest action authored by author, even when other
// participants drew after it.
func (l *Log) UndoLastBy(author string) (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for e := l.actions.Back(); e != nil; e = e.Prev() {
		if e.Value.(Action).Author == author {
			a := l.takeLog(e)
			l.pushRedo(a)
			return a, true
		}
	}
	return Action{}, false
}

// RedoLastBy restores the most recently undone action authored by author.
func (l *Log) RedoLastBy(author string) (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for e := l.redo.Back(); e != nil; e = e.Prev() {
		if e.Value.(Action).Author == author {
			a := l.takeRedo(e)
			l.pushLog(a)
			return a, true
		}
	}
	return Action{}, false
}

// RemoveByID applies an undo notice: the action leaves the log wherever it
// is and goes onto the redo stack. Unknown or already undone ids are no-ops.
func (l *Log) RemoveByID(id string) (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.inLog[id]
	if !ok {
		if _, undone := l.inRedo[id]; !undone {
			l.logger.Warn("undo for unknown action, ignoring", "id", id)
		}
		return Action{}, false
	}
	a := l.takeLog(e)
	l.pushRedo(a)
	return a, true
}

// Insert applies a redo notice: the action goes to the log tail and its id is
// dropped from the redo stack. Ids already in the log are no-ops.
func (l *Log) Insert(a Action) bool {
	if err := a.Validate(); err != nil {
		l.logger.Warn("redo rejected", "id", a.ID, "err", err)
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.inLog[a.ID]; ok {
		return false
	}
	if e, ok := l.inRedo[a.ID]; ok {
		l.takeRedo(e)
	}
	l.pushLog(a.clone())
	return true
}

// Load replaces the whole state with a snapshot. The redo stack starts empty.
// Duplicate or invalid entries in the snapshot are skipped.
func (l *Log) Load(actions []Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions.Init()
	clear(l.inLog)
	l.clearRedo()
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			l.logger.Warn("snapshot entry skipped", "id", a.ID, "err", err)
			continue
		}
		if _, ok := l.inLog[a.ID]; ok {
			l.logger.Warn("snapshot duplicate skipped", "id", a.ID)
			continue
		}
		l.pushLog(a.clone())
	}
	l.logger.Info("snapshot loaded", "actions", l.actions.Len())
}

// Snapshot returns the log in replay order. Actions are immutable and must
// not be modified by the caller.
func (l *Log) Snapshot() []Action {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return values(l.actions)
}

// RedoSnapshot returns the redo stack, most recently undone last.
func (l *Log) RedoSnapshot() []Action {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return values(l.redo)
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.actions.Len()
}

func (l *Log) RedoLen() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.redo.Len()
}

// Contains reports whether id is currently in the log (not the redo stack).
func (l *Log) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.inLog[id]
	return ok
}

func values(ls *list.List) []Action {
	out := make([]Action, 0, ls.Len())
	for e := ls.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Action))
	}
	return out
}
