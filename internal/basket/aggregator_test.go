package basket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gsatlink/pos-backend/pkg/db/models"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
)

func testItem(price int64, qty int) models.CatalogItem {
	return models.CatalogItem{
		ID:           uuid.New(),
		Name:         "GSAT HD Box",
		StockCode:    "STK-" + uuid.NewString()[:8],
		UnitPrice:    decimal.NewFromInt(price),
		AvailableQty: qty,
	}
}

func TestAddItemInsertsWithQuantityOne(t *testing.T) {
	var agg Aggregator
	item := testItem(500, 3)

	if err := agg.AddItem(item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := agg.Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("expected one line qty 1, got %+v", lines)
	}
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	var agg Aggregator
	item := testItem(250, 5)

	if err := agg.AddItem(item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.AddItem(item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := agg.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}
	if !agg.Total().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total 500, got %s", agg.Total())
	}
}

func TestAddItemStockCeiling(t *testing.T) {
	var agg Aggregator
	const available = 3
	item := testItem(500, available)

	for i := 0; i < available; i++ {
		if err := agg.AddItem(item); err != nil {
			t.Fatalf("add %d: unexpected error: %v", i+1, err)
		}
	}

	err := agg.AddItem(item)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStockExceeded {
		t.Fatalf("expected stock exceeded, got %v", err)
	}
	if got := agg.Lines()[0].Quantity; got != available {
		t.Fatalf("rejected add must not mutate state, qty = %d", got)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	var agg Aggregator
	err := agg.AddItem(testItem(100, 0))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStockExceeded {
		t.Fatalf("expected stock exceeded for zero stock, got %v", err)
	}
	if agg.Len() != 0 {
		t.Fatal("no line may be inserted for out-of-stock item")
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	var agg Aggregator
	first := testItem(100, 5)
	second := testItem(200, 5)
	_ = agg.AddItem(first)
	_ = agg.AddItem(second)

	if err := agg.SetQuantity(0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Len() != 1 {
		t.Fatalf("expected length to drop by exactly 1, got %d", agg.Len())
	}
	if agg.Lines()[0].Item.ID != second.ID {
		t.Fatal("wrong line removed")
	}
}

func TestSetQuantityRejectsBeyondStock(t *testing.T) {
	var agg Aggregator
	item := testItem(100, 2)
	_ = agg.AddItem(item)

	err := agg.SetQuantity(0, 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStockExceeded {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if agg.Lines()[0].Quantity != 1 {
		t.Fatal("rejected change must leave quantity unchanged")
	}
}

func TestSetQuantityExact(t *testing.T) {
	var agg Aggregator
	_ = agg.AddItem(testItem(100, 10))

	if err := agg.SetQuantity(0, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Lines()[0].Quantity != 7 {
		t.Fatalf("expected 7, got %d", agg.Lines()[0].Quantity)
	}
}

func TestSetQuantityIndexOutOfRange(t *testing.T) {
	var agg Aggregator
	for _, idx := range []int{-1, 0, 3} {
		err := agg.SetQuantity(idx, 1)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("index %d: expected validation error, got %v", idx, err)
		}
	}
}

func TestRemoveLineUnconditional(t *testing.T) {
	var agg Aggregator
	_ = agg.AddItem(testItem(100, 5))

	if err := agg.RemoveLine(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Len() != 0 {
		t.Fatal("line not removed")
	}
}

func TestClearResetsEverything(t *testing.T) {
	var agg Aggregator
	_ = agg.AddItem(testItem(100, 5))
	_ = agg.AddItem(testItem(250, 5))

	agg.Clear()
	if agg.Len() != 0 {
		t.Fatalf("expected zero lines, got %d", agg.Len())
	}
	if !agg.Total().Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", agg.Total())
	}
}

func TestTotalDecimalAccumulation(t *testing.T) {
	var agg Aggregator
	item := testItem(0, 100)
	item.UnitPrice = decimal.RequireFromString("0.10")
	for i := 0; i < 100; i++ {
		if err := agg.AddItem(item); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// 100 * 0.10 must be exactly 10, no float drift.
	if !agg.Total().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected exactly 10, got %s", agg.Total())
	}
}
