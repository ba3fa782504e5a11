// Package board holds the client-side projection of tasks as stage columns
// and the reconciler that applies drag moves optimistically.
package board

import (
	"errors"
	"fmt"
)

var (
	ErrCardNotFound  = errors.New("task not found in source column")
	ErrUnknownColumn = errors.New("unknown column")
)

// Card is the part of a task the board renders.
type Card struct {
	ID       string
	Title    string
	Stage    string
	Priority string
}

// Location addresses a slot in a column.
type Location struct {
	Column string
	Index  int
}

// DropEvent is the end of a drag gesture. A nil Destination means the drop
// was cancelled.
type DropEvent struct {
	TaskID      string
	Source      Location
	Destination *Location
}

// Board is an immutable snapshot: transitions return a new Board and leave
// the receiver untouched. Versions counts the changes applied to each column.
type Board struct {
	Order    []string
	Columns  map[string][]Card
	Versions map[string]uint64
}

// New groups cards into the columns named by order, keeping their relative
// order. A card whose stage is not a column is an error.
func New(order []string, cards []Card) (Board, error) {
	b := Board{
		Order:    append([]string{}, order...),
		Columns:  make(map[string][]Card, len(order)),
		Versions: make(map[string]uint64, len(order)),
	}
	for _, col := range order {
		b.Columns[col] = []Card{}
	}
	for _, c := range cards {
		if _, ok := b.Columns[c.Stage]; !ok {
			return Board{}, fmt.Errorf("%w %q for task %s", ErrUnknownColumn, c.Stage, c.ID)
		}
		b.Columns[c.Stage] = append(b.Columns[c.Stage], c)
	}
	return b, nil
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	out := Board{
		Order:    append([]string{}, b.Order...),
		Columns:  make(map[string][]Card, len(b.Columns)),
		Versions: make(map[string]uint64, len(b.Versions)),
	}
	for col, cards := range b.Columns {
		out.Columns[col] = append([]Card{}, cards...)
	}
	for col, v := range b.Versions {
		out.Versions[col] = v
	}
	return out
}

// Locate returns the column and index holding id.
func (b Board) Locate(id string) (Location, bool) {
	for _, col := range b.Order {
		for i, c := range b.Columns[col] {
			if c.ID == id {
				return Location{Column: col, Index: i}, true
			}
		}
	}
	return Location{}, false
}

// Move applies ev and reports whether anything changed. Cancelled drops and
// drops onto the source slot are no-ops. The card is removed from its source
// column before it is inserted, clamped, at the destination.
func (b Board) Move(ev DropEvent) (Board, bool, error) {
	if ev.Destination == nil || *ev.Destination == ev.Source {
		return b, false, nil
	}
	src, dst := ev.Source.Column, ev.Destination.Column
	if _, ok := b.Columns[src]; !ok {
		return b, false, fmt.Errorf("%w %q", ErrUnknownColumn, src)
	}
	if _, ok := b.Columns[dst]; !ok {
		return b, false, fmt.Errorf("%w %q", ErrUnknownColumn, dst)
	}

	from := indexOf(b.Columns[src], ev.TaskID)
	if from < 0 {
		return b, false, ErrCardNotFound
	}

	out := b.Clone()
	card, rest := removeAt(out.Columns[src], from)
	out.Columns[src] = rest
	card.Stage = dst
	out.Columns[dst] = insertAt(out.Columns[dst], ev.Destination.Index, card)

	out.Versions[src]++
	if dst != src {
		out.Versions[dst]++
	}
	return out, true, nil
}

// Relocate moves id, wherever it is, to loc. It is a no-op when id is not on
// the board.
func (b Board) Relocate(id string, loc Location) Board {
	at, ok := b.Locate(id)
	if !ok {
		return b
	}
	if _, ok := b.Columns[loc.Column]; !ok {
		return b
	}

	out := b.Clone()
	card, rest := removeAt(out.Columns[at.Column], at.Index)
	out.Columns[at.Column] = rest
	card.Stage = loc.Column
	out.Columns[loc.Column] = insertAt(out.Columns[loc.Column], loc.Index, card)

	out.Versions[at.Column]++
	if loc.Column != at.Column {
		out.Versions[loc.Column]++
	}
	return out
}

func indexOf(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(cards []Card, i int) (Card, []Card) {
	card := cards[i]
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return card, append(out, cards[i+1:]...)
}

func insertAt(cards []Card, i int, card Card) []Card {
	if i < 0 {
		i = 0
	}
	if i > len(cards) {
		i = len(cards)
	}
	out := make([]Card, 0, len(cards)+1)
	out = append(out, cards[:i]...)
	out = append(out, card)
	return append(out, cards[i:]...)
}
