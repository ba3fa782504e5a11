package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	genericFailure = "Failed to update task status. Please try again."
	cardNotFound   = "Could not find task to move"
)

var columnTitles = map[string]string{
	"todo":        "To Do",
	"in progress": "In Progress",
	"completed":   "Completed",
}

// StageUpdater persists a card's new column. The taskapi client implements it.
type StageUpdater interface {
	UpdateStage(ctx context.Context, taskID, stage string) error
}

// Toaster shows transient messages to the user.
type Toaster interface {
	Success(message string)
	Error(message string)
}

// UserMessenger is implemented by errors whose message may be shown verbatim.
type UserMessenger interface {
	UserMessage() string
}

// snapshot holds what a move needs to undo itself: the pre-move contents of
// the columns it touched and their versions right after the move. chained is
// set when the card already had a move in flight, so its source was never
// confirmed.
type snapshot struct {
	columns     map[string][]Card
	versions    map[string]uint64
	destination Location
	seq         uint64
	chained     bool
}

// cardState follows one card while it has moves in flight. confirmed is the
// last location the server accepted, or where the card sat before its first
// unresolved move.
type cardState struct {
	seq          uint64
	pending      int
	confirmed    Location
	confirmedSeq uint64
}

// Reconciler owns the board state. Drag moves are applied synchronously and
// confirmed remotely in the background; a failed move is rolled back without
// undoing later, independent moves.
type Reconciler struct {
	mu    sync.Mutex
	board Board
	cards map[string]*cardState
	wg    sync.WaitGroup

	updater StageUpdater
	toaster Toaster
	log     logrus.FieldLogger
}

func NewReconciler(b Board, updater StageUpdater, toaster Toaster, log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{
		board:   b.Clone(),
		cards:   make(map[string]*cardState),
		updater: updater,
		toaster: toaster,
		log:     log,
	}
}

// Board returns a copy of the current state.
func (r *Reconciler) Board() Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.Clone()
}

// Pending reports whether a move of taskID awaits confirmation.
func (r *Reconciler) Pending(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.cards[taskID]
	return ok && st.pending > 0
}

// Replace swaps in a freshly loaded board. Moves still in flight can no longer
// restore whole columns and fall back to relocating their own card.
func (r *Reconciler) Replace(b Board) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := b.Clone()
	base := maxVersion(r.board.Versions) + 1
	for col := range next.Columns {
		next.Versions[col] += base
	}
	r.board = next
}

// Wait blocks until every in-flight move has resolved.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// OnDragEnd applies ev before returning and starts the remote update. The
// returned channel yields the outcome once and is then closed; it is already
// closed for no-ops and yields the error for rejected moves.
func (r *Reconciler) OnDragEnd(ctx context.Context, ev DropEvent) <-chan error {
	done := make(chan error, 1)

	r.mu.Lock()
	next, moved, err := r.board.Move(ev)
	if err != nil {
		r.mu.Unlock()
		r.toaster.Error(userMessage(err))
		done <- err
		close(done)
		return done
	}
	if !moved {
		r.mu.Unlock()
		close(done)
		return done
	}

	st, ok := r.cards[ev.TaskID]
	if !ok {
		st = &cardState{confirmed: ev.Source}
		r.cards[ev.TaskID] = st
	}
	st.seq++

	snap := snapshot{
		columns:     make(map[string][]Card, 2),
		versions:    make(map[string]uint64, 2),
		destination: *ev.Destination,
		seq:         st.seq,
		chained:     st.pending > 0,
	}
	for _, col := range []string{ev.Source.Column, ev.Destination.Column} {
		snap.columns[col] = append([]Card{}, r.board.Columns[col]...)
		snap.versions[col] = next.Versions[col]
	}
	r.board = next
	st.pending++
	r.wg.Add(1)
	r.mu.Unlock()

	stage := ev.Destination.Column
	go func() {
		defer r.wg.Done()
		err := r.updater.UpdateStage(ctx, ev.TaskID, stage)
		r.resolve(ev.TaskID, snap, err)
		if err != nil {
			done <- err
		}
		close(done)
	}()
	return done
}

func (r *Reconciler) resolve(taskID string, snap snapshot, err error) {
	r.mu.Lock()
	st := r.cards[taskID]
	st.pending--
	if err == nil {
		if snap.seq > st.confirmedSeq {
			st.confirmed = snap.destination
			st.confirmedSeq = snap.seq
		}
		r.settle(taskID, st)
		r.mu.Unlock()
		r.toaster.Success(fmt.Sprintf("Task moved to %s", columnTitle(snap.destination.Column)))
		return
	}

	// A later move of the same card decides where it ends up.
	latest := snap.seq == st.seq
	restored := false
	if latest {
		restored = r.rollback(taskID, snap, st.confirmed)
	}
	r.settle(taskID, st)
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"taskId": taskID, "fullRestore": restored, "latest": latest}).
		Warnf("Event ID: MOVE_ROLLED_BACK, Description: Stage update failed: %v", err)
	r.toaster.Error(userMessage(err))
}

// settle drops the card's state once nothing is in flight, leaving the card
// in its confirmed column. r.mu must be held.
func (r *Reconciler) settle(taskID string, st *cardState) {
	if st.pending > 0 {
		return
	}
	delete(r.cards, taskID)
	if at, ok := r.board.Locate(taskID); ok && at.Column != st.confirmed.Column {
		r.board = r.board.Relocate(taskID, st.confirmed)
	}
}

// rollback restores the snapshot columns wholesale when the move started from
// a confirmed position and nothing has touched those columns since; otherwise
// it moves only taskID back to confirmed. r.mu must be held.
func (r *Reconciler) rollback(taskID string, snap snapshot, confirmed Location) bool {
	untouched := !snap.chained
	for col, v := range snap.versions {
		if r.board.Versions[col] != v {
			untouched = false
			break
		}
	}

	if untouched {
		next := r.board.Clone()
		for col, cards := range snap.columns {
			next.Columns[col] = append([]Card{}, cards...)
			next.Versions[col]++
		}
		r.board = next
		return true
	}

	r.board = r.board.Relocate(taskID, confirmed)
	return false
}

func userMessage(err error) string {
	var um UserMessenger
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	if errors.Is(err, ErrCardNotFound) {
		return cardNotFound
	}
	return genericFailure
}

func columnTitle(col string) string {
	if title, ok := columnTitles[col]; ok {
		return title
	}
	return col
}

func maxVersion(versions map[string]uint64) uint64 {
	var top uint64
	for _, v := range versions {
		if v > top {
			top = v
		}
	}
	return top
}
