package board

import (
	"errors"
	"reflect"
	"testing"
)

var columns = []string{"todo", "in progress", "completed"}

func card(id, stage string) Card {
	return Card{ID: id, Title: "Task " + id, Stage: stage}
}

func newBoard(t *testing.T, cards ...Card) Board {
	t.Helper()
	b, err := New(columns, cards)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func ids(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// assertEachOnce checks that every id in want sits in exactly one column and
// nothing else is on the board.
func assertEachOnce(t *testing.T, b Board, want ...string) {
	t.Helper()
	count := make(map[string]int)
	total := 0
	for _, col := range b.Order {
		for _, c := range b.Columns[col] {
			count[c.ID]++
			total++
		}
	}
	for _, id := range want {
		if count[id] != 1 {
			t.Errorf("task %s appears %d times", id, count[id])
		}
	}
	if total != len(want) {
		t.Errorf("board holds %d cards, want %d", total, len(want))
	}
}

func TestNewRejectsUnknownStage(t *testing.T) {
	_, err := New(columns, []Card{card("x", "archived")})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("New() error = %v, want ErrUnknownColumn", err)
	}
}

func TestMoveNoop(t *testing.T) {
	b := newBoard(t, card("x", "todo"))
	src := Location{Column: "todo", Index: 0}

	for name, ev := range map[string]DropEvent{
		"cancelled": {TaskID: "x", Source: src},
		"same slot": {TaskID: "x", Source: src, Destination: &Location{Column: "todo", Index: 0}},
	} {
		t.Run(name, func(t *testing.T) {
			next, moved, err := b.Move(ev)
			if err != nil || moved {
				t.Fatalf("Move() = moved %v, err %v; want no-op", moved, err)
			}
			if !reflect.DeepEqual(next, b) {
				t.Error("no-op changed the board")
			}
		})
	}
}

func TestMoveUnknownCard(t *testing.T) {
	b := newBoard(t, card("x", "todo"))
	_, moved, err := b.Move(DropEvent{
		TaskID:      "ghost",
		Source:      Location{Column: "todo", Index: 0},
		Destination: &Location{Column: "completed", Index: 0},
	})
	if !errors.Is(err, ErrCardNotFound) || moved {
		t.Errorf("Move() = %v, %v; want ErrCardNotFound", moved, err)
	}
}

func TestMoveAcrossColumns(t *testing.T) {
	b := newBoard(t, card("x", "todo"), card("a", "todo"), card("b1", "in progress"), card("b2", "in progress"))

	next, moved, err := b.Move(DropEvent{
		TaskID:      "x",
		Source:      Location{Column: "todo", Index: 0},
		Destination: &Location{Column: "in progress", Index: 1},
	})
	if err != nil || !moved {
		t.Fatalf("Move() = %v, %v", moved, err)
	}

	if got := ids(next.Columns["todo"]); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("todo = %v", got)
	}
	if got := ids(next.Columns["in progress"]); !reflect.DeepEqual(got, []string{"b1", "x", "b2"}) {
		t.Errorf("in progress = %v", got)
	}
	if next.Columns["in progress"][1].Stage != "in progress" {
		t.Error("moved card keeps old stage")
	}
	if got := ids(b.Columns["todo"]); !reflect.DeepEqual(got, []string{"x", "a"}) {
		t.Errorf("receiver mutated: todo = %v", got)
	}
	assertEachOnce(t, next, "x", "a", "b1", "b2")
}

func TestMoveWithinColumnClamps(t *testing.T) {
	b := newBoard(t, card("a", "todo"), card("b", "todo"), card("c", "todo"))

	next, _, err := b.Move(DropEvent{
		TaskID:      "a",
		Source:      Location{Column: "todo", Index: 0},
		Destination: &Location{Column: "todo", Index: 99},
	})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := ids(next.Columns["todo"]); !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("todo = %v", got)
	}
	if next.Versions["todo"] != 1 {
		t.Errorf("todo version = %d, want 1", next.Versions["todo"])
	}
}

func TestRelocate(t *testing.T) {
	b := newBoard(t, card("a", "todo"), card("b", "completed"))

	next := b.Relocate("b", Location{Column: "todo", Index: 0})
	if got := ids(next.Columns["todo"]); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("todo = %v", got)
	}
	if same := b.Relocate("ghost", Location{Column: "todo"}); !reflect.DeepEqual(same, b) {
		t.Error("relocating a missing card changed the board")
	}
}
