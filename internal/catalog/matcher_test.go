package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gsatlink/pos-backend/pkg/db/models"
)

func strPtr(v string) *string { return &v }

func item(name, stock, serial, barcode string) models.CatalogItem {
	it := models.CatalogItem{
		ID:           uuid.New(),
		Name:         name,
		StockCode:    stock,
		UnitPrice:    decimal.NewFromInt(100),
		AvailableQty: 5,
	}
	if serial != "" {
		it.SerialNo = strPtr(serial)
	}
	if barcode != "" {
		it.Barcode = strPtr(barcode)
	}
	return it
}

func candidates(items ...models.CatalogItem) []ItemCandidate {
	out := make([]ItemCandidate, len(items))
	for i, it := range items {
		out[i] = ItemCandidate{Item: it}
	}
	return out
}

func TestMatchEmptyKeyAttemptsNothing(t *testing.T) {
	cands := candidates(item("Widget", "", "", ""))
	if _, outcome := Match("", cands); outcome != OutcomeNone {
		t.Fatalf("empty key must yield none, got %s", outcome)
	}
}

func TestMatchExactOnEachField(t *testing.T) {
	it := item("GSAT Box HD", "STK-01", "774053", "4800888123457")
	it.ExtraCodes = []string{"ALT-9"}
	cands := candidates(it)

	for _, key := range []string{"774053", "stk-01", "4800888123457", "alt-9", "gsat box hd"} {
		got, outcome := Match(key, cands)
		if outcome != OutcomeExact {
			t.Fatalf("key %q: expected exact, got %s", key, outcome)
		}
		if got.Item.ID != it.ID {
			t.Fatalf("key %q matched wrong item", key)
		}
	}
}

func TestMatchExactPassPrecedesPartial(t *testing.T) {
	// Key equals the serial of one item and is a substring of another's barcode.
	exactHit := item("Exact", "STK-A", "774053", "")
	partialHit := item("Partial", "STK-B", "", "00774053999")
	cands := candidates(partialHit, exactHit)

	got, outcome := Match("774053", cands)
	if outcome != OutcomeExact {
		t.Fatalf("expected exact outcome, got %s", outcome)
	}
	if got.Item.ID != exactHit.ID {
		t.Fatal("exact pass must win over an earlier partial candidate")
	}
}

func TestMatchPartialFallback(t *testing.T) {
	it := item("Receiver", "STK-77", "000774053", "")
	cands := candidates(it)

	got, outcome := Match("774053", cands)
	if outcome != OutcomePartial {
		t.Fatalf("expected partial fallback, got %s", outcome)
	}
	if got.Item.ID != it.ID {
		t.Fatal("partial fallback matched wrong item")
	}
}

func TestMatchNameExcludedFromPartialPass(t *testing.T) {
	it := item("Widget 774053 Deluxe", "STK-1", "", "")
	cands := candidates(it)

	if _, outcome := Match("774053", cands); outcome != OutcomeNone {
		t.Fatalf("partial name matches must not count, got %s", outcome)
	}
}

func TestMatchFirstCandidateWinsNoScoring(t *testing.T) {
	first := item("First", "SHARED", "", "")
	second := item("Second", "SHARED", "", "")
	cands := candidates(first, second)

	got, outcome := Match("shared", cands)
	if outcome != OutcomeExact || got.Item.ID != first.ID {
		t.Fatal("first candidate in order must win")
	}
}

func TestMatchNoMatchIsNormalOutcome(t *testing.T) {
	cands := candidates(item("Widget", "STK-1", "111", "222"))
	if _, outcome := Match("does-not-exist", cands); outcome != OutcomeNone {
		t.Fatalf("expected none, got %s", outcome)
	}
}

func TestSnapshotMatchItem(t *testing.T) {
	it := item("Box", "STK-9", "555", "")
	snap := NewSnapshot([]models.CatalogItem{it}, time.Now())

	got, outcome := snap.MatchItem("555")
	if outcome != OutcomeExact || got.ID != it.ID {
		t.Fatalf("snapshot match failed: outcome=%s", outcome)
	}

	if _, ok := snap.ItemByID(it.ID); !ok {
		t.Fatal("snapshot should resolve item by id")
	}
}
