package grid

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

type Key int

const (
	KeyNone Key = iota
	KeyRight
	KeyEnter
	KeyLeft
	KeyUp
	KeyDown
)

var key_names = map[string]Key{
	"ArrowRight": KeyRight,
	"Enter":      KeyEnter,
	"ArrowLeft":  KeyLeft,
	"ArrowUp":    KeyUp,
	"ArrowDown":  KeyDown,
}

// ParseKey reads a key by its DOM name, e.g. "ArrowRight".
func ParseKey(s string) (Key, error) {
	if k, ok := key_names[s]; ok {
		return k, nil
	}
	return KeyNone, errors.Errorf("%s is not a navigation key", s)
}

func KeyFromEvent(ev *tcell.EventKey) Key {
	switch ev.Key() {
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	}
	return KeyNone
}

// Navigate moves the cursor for one key press. handled is true for every
// navigation key, even when the cursor can not move, so hosts drop the
// key's default action.
//
// Right and Enter wrap to the first column of the next row, appending a
// row when leaving the last one. Down never appends.
func (g *Grid) Navigate(k Key) (moved, handled bool) {
	if k == KeyNone {
		return false, false
	}
	g.locker.Lock()
	defer g.locker.Unlock()
	if len(g.columns) == 0 || len(g.slots) == 0 {
		return false, true
	}

	c := &g.cursor
	switch k {
	case KeyRight, KeyEnter:
		switch {
		case c.Col < len(g.columns)-1:
			c.Col++
		case c.Row == len(g.slots)-1:
			g.addRow()
			c.Row, c.Col = c.Row+1, 0
		default:
			c.Row, c.Col = c.Row+1, 0
		}
		return true, true
	case KeyLeft:
		if c.Col > 0 {
			c.Col--
			return true, true
		}
	case KeyUp:
		if c.Row > 0 {
			c.Row--
			return true, true
		}
	case KeyDown:
		if c.Row < len(g.slots)-1 {
			c.Row++
			return true, true
		}
	}
	return false, true
}
