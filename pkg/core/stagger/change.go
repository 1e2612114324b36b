package stagger

import "fmt"

// Action is the kind of collection mutation reported to [Layout.ItemsChanged].
type Action int

const (
	ActionInsert Action = iota
	ActionRemove
	ActionReplace
	ActionMove
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionRemove:
		return "remove"
	case ActionReplace:
		return "replace"
	case ActionMove:
		return "move"
	case ActionReset:
		return "reset"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction parses the lower-case action name.
func ParseAction(s string) (Action, error) {
	for a := ActionInsert; a <= ActionReset; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown change action %q", s)
}

// Change describes one mutation of the source collection. NewIndex is the
// first affected index after the mutation (insert, replace, move target);
// OldIndex is the first affected index before it (remove, move source).
// Count items are affected; the cache is invalidated from the smallest
// touched index regardless of Count.
type Change struct {
	Action   Action
	NewIndex int
	OldIndex int
	Count    int
}

// InsertAt reports n items inserted at index.
func InsertAt(index, n int) Change {
	return Change{Action: ActionInsert, NewIndex: index, OldIndex: -1, Count: n}
}

// RemoveAt reports n items removed starting at index.
func RemoveAt(index, n int) Change {
	return Change{Action: ActionRemove, NewIndex: -1, OldIndex: index, Count: n}
}

// ReplaceAt reports n items replaced starting at index.
func ReplaceAt(index, n int) Change {
	return Change{Action: ActionReplace, NewIndex: index, OldIndex: index, Count: n}
}

// Move reports n items moved from index from to index to.
func Move(from, to, n int) Change {
	return Change{Action: ActionMove, NewIndex: to, OldIndex: from, Count: n}
}

// Reset reports that the whole collection was replaced.
func Reset() Change {
	return Change{Action: ActionReset, NewIndex: -1, OldIndex: -1}
}

func (c Change) String() string {
	switch c.Action {
	case ActionInsert:
		return fmt.Sprintf("insert %d at %d", c.Count, c.NewIndex)
	case ActionRemove:
		return fmt.Sprintf("remove %d at %d", c.Count, c.OldIndex)
	case ActionReplace:
		return fmt.Sprintf("replace %d at %d", c.Count, c.NewIndex)
	case ActionMove:
		return fmt.Sprintf("move %d from %d to %d", c.Count, c.OldIndex, c.NewIndex)
	default:
		return c.Action.String()
	}
}

func (c Change) apply(st *State) {
	switch c.Action {
	case ActionInsert:
		st.RemoveFromIndex(mustIndex(c, c.NewIndex))
	case ActionRemove:
		st.RemoveFromIndex(mustIndex(c, c.OldIndex))
	case ActionReplace:
		k := mustIndex(c, c.NewIndex)
		st.RemoveFromIndex(k)
		st.RecycleElementAt(k)
	case ActionMove:
		st.RemoveRange(mustIndex(c, c.OldIndex), mustIndex(c, c.NewIndex))
	case ActionReset:
		st.Clear()
	default:
		panic(fmt.Sprintf("stagger: unknown change action %v", c.Action))
	}
}

func mustIndex(c Change, i int) int {
	if i < 0 {
		panic(fmt.Sprintf("stagger: %v: negative index", c))
	}
	return i
}
