package basket

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gsatlink/pos-backend/pkg/db/models"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
)

// Line is a catalog item snapshot plus the requested quantity. Quantity is
// always >= 1 and <= the snapshotted available quantity.
type Line struct {
	Item     models.CatalogItem
	Quantity int
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Aggregator maintains the working set of basket lines for one session. It
// never queries storage; quantity bounds come from the catalog snapshot taken
// at session start, so they can go stale relative to concurrent operators.
type Aggregator struct {
	lines []Line
}

// AddItem increments the line for the item (matched by ID) or inserts a new
// line with quantity 1. Exceeding the snapshotted available quantity is
// rejected with a stock error and leaves state unchanged.
func (a *Aggregator) AddItem(item models.CatalogItem) error {
	for i := range a.lines {
		if a.lines[i].Item.ID == item.ID {
			if a.lines[i].Quantity+1 > a.lines[i].Item.AvailableQty {
				return pkgerrors.New(pkgerrors.CodeStockExceeded, "maximum stock reached").
					WithDetails(map[string]any{"item_id": item.ID, "available_qty": a.lines[i].Item.AvailableQty})
			}
			a.lines[i].Quantity++
			return nil
		}
	}

	if item.AvailableQty < 1 {
		return pkgerrors.New(pkgerrors.CodeStockExceeded, "item out of stock").
			WithDetails(map[string]any{"item_id": item.ID})
	}
	a.lines = append(a.lines, Line{Item: item, Quantity: 1})
	return nil
}

// SetQuantity sets the line quantity exactly. Zero or below removes the line;
// exceeding the stock bound is rejected and the quantity left unchanged.
func (a *Aggregator) SetQuantity(index, quantity int) error {
	if index < 0 || index >= len(a.lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, "line index out of range")
	}
	if quantity <= 0 {
		a.lines = append(a.lines[:index], a.lines[index+1:]...)
		return nil
	}
	if quantity > a.lines[index].Item.AvailableQty {
		return pkgerrors.New(pkgerrors.CodeStockExceeded, "insufficient stock").
			WithDetails(map[string]any{"available_qty": a.lines[index].Item.AvailableQty})
	}
	a.lines[index].Quantity = quantity
	return nil
}

// RemoveLine removes the line unconditionally.
func (a *Aggregator) RemoveLine(index int) error {
	if index < 0 || index >= len(a.lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, "line index out of range")
	}
	a.lines = append(a.lines[:index], a.lines[index+1:]...)
	return nil
}

// Total sums unit price times quantity across all lines with decimal
// accumulation, so totals stay exact across many lines.
func (a *Aggregator) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range a.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Clear empties all lines.
func (a *Aggregator) Clear() {
	a.lines = nil
}

// Lines returns a copy of the current lines.
func (a *Aggregator) Lines() []Line {
	out := make([]Line, len(a.lines))
	copy(out, a.lines)
	return out
}

// Len reports the number of lines.
func (a *Aggregator) Len() int {
	return len(a.lines)
}

// FindLine returns the index of the line holding the item, or -1.
func (a *Aggregator) FindLine(itemID uuid.UUID) int {
	for i := range a.lines {
		if a.lines[i].Item.ID == itemID {
			return i
		}
	}
	return -1
}
