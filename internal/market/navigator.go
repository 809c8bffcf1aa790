package market

import (
	"fmt"
	"strings"

	"gainboard/internal/domain/entities"
)

// Step is a cursor navigation direction.
type Step int

const (
	StepNext Step = iota
	StepPrev
)

// Navigator walks the cursor over the entire filtered view, decoupling
// browsing order from page boundaries: each step also moves the current
// page to wherever the cursor landed. When the filtered set changes under
// the cursor, resolution is the navigator's job, not the store's; a cursor
// that no longer resolves restarts at the head of the view.
type Navigator struct {
	store *Store
}

func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// Advance steps the cursor cyclically and returns the instrument it landed
// on. The second return is false when the filtered view is empty.
func (n *Navigator) Advance(step Step) (entities.Instrument, bool) {
	delta := 1
	if step == StepPrev {
		delta = -1
	}
	return n.store.AdvanceCursor(delta)
}

// Current resolves the cursor against the filtered view.
func (n *Navigator) Current() (entities.Instrument, bool) {
	return n.store.CursorInstrument()
}

// TradeURL is the exchange trade-page URL for the instrument under the
// cursor.
func (n *Navigator) TradeURL() (string, bool) {
	inst, ok := n.Current()
	if !ok {
		return "", false
	}
	quote := strings.TrimPrefix(inst.Symbol, inst.BaseAsset)
	return fmt.Sprintf("https://www.binance.com/en/trade/%s_%s", inst.BaseAsset, quote), true
}
