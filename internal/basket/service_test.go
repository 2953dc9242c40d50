package basket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/internal/catalog"
	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

type stubCatalog struct {
	items []models.CatalogItem
	err   error
}

func (s *stubCatalog) GetSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return catalog.NewSnapshot(s.items, time.Now()), nil
}

func (s *stubCatalog) RefreshSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return s.GetSnapshot(ctx)
}

func (s *stubCatalog) ListPage(ctx context.Context, params pagination.Params) ([]models.CatalogItem, string, error) {
	return s.items, "", nil
}

func (s *stubCatalog) CreateItem(ctx context.Context, input catalog.ItemInput) (*models.CatalogItem, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCatalog) UpdateItem(ctx context.Context, id uuid.UUID, input catalog.ItemInput) (*models.CatalogItem, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCatalog) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

type stubSaleRepo struct {
	created  []*models.SaleRecord
	replaced []*models.SaleRecord
	byID     map[uuid.UUID]*models.SaleRecord
	fail     error
}

func (s *stubSaleRepo) Create(ctx context.Context, tx *gorm.DB, record *models.SaleRecord) error {
	if s.fail != nil {
		return s.fail
	}
	record.ID = uuid.New()
	s.created = append(s.created, record)
	return nil
}

func (s *stubSaleRepo) Replace(ctx context.Context, tx *gorm.DB, record *models.SaleRecord) error {
	if s.fail != nil {
		return s.fail
	}
	s.replaced = append(s.replaced, record)
	return nil
}

func (s *stubSaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	if rec, ok := s.byID[id]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSaleRepo) ListPage(ctx context.Context, params pagination.Params) ([]models.SaleRecord, *pagination.Cursor, error) {
	return nil, nil, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingCue struct {
	calls int
}

func (c *recordingCue) Matched(context.Context, string, models.CatalogItem, catalog.Outcome) {
	c.calls++
}

func fixtureItem() models.CatalogItem {
	return models.CatalogItem{
		ID:           uuid.New(),
		Name:         "GSAT Receiver",
		StockCode:    "STK-774053",
		SerialNo:     strPtr("774053"),
		UnitPrice:    decimal.NewFromInt(500),
		AvailableQty: 3,
	}
}

func strPtr(v string) *string { return &v }

func newTestService(t *testing.T, items ...models.CatalogItem) (Service, *stubSaleRepo, *recordingCue) {
	t.Helper()
	repo := &stubSaleRepo{byID: map[uuid.UUID]*models.SaleRecord{}}
	cue := &recordingCue{}
	svc, err := NewService(&stubCatalog{items: items}, NewManager(time.Hour), repo, stubTx{}, cue, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, cue
}

func TestScanEndToEnd(t *testing.T) {
	item := fixtureItem()
	svc, _, cue := newTestService(t, item)

	sess, err := svc.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	// Spec scenario: three scans reach the stock bound, the fourth warns.
	for i := 1; i <= 3; i++ {
		result, err := svc.ProcessScan(context.Background(), scan.Event{
			Raw: "774053", Source: scan.SourceBarcode, SessionID: sess.ID,
		})
		if err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
		if !result.Matched || result.Outcome != catalog.OutcomeExact {
			t.Fatalf("scan %d: expected exact match, got %+v", i, result)
		}
		if result.Warning != "" {
			t.Fatalf("scan %d: unexpected warning %q", i, result.Warning)
		}
	}

	state := sess.State()
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 3 {
		t.Fatalf("expected one line qty 3, got %+v", state.Lines)
	}
	if state.Total != "1500.00" {
		t.Fatalf("expected total 1500.00, got %s", state.Total)
	}

	fourth, err := svc.ProcessScan(context.Background(), scan.Event{
		Raw: "774053", Source: scan.SourceBarcode, SessionID: sess.ID,
	})
	if err != nil {
		t.Fatalf("fourth scan: %v", err)
	}
	if fourth.Warning == "" {
		t.Fatal("fourth scan must warn about the stock ceiling")
	}
	if got := sess.State().Lines[0].Quantity; got != 3 {
		t.Fatalf("fourth scan must not mutate state, qty = %d", got)
	}

	if cue.calls != 4 {
		t.Fatalf("cue should fire on every match, got %d", cue.calls)
	}
}

func TestProcessScanStructuredPayload(t *testing.T) {
	item := fixtureItem()
	svc, _, _ := newTestService(t, item)
	sess, _ := svc.OpenSession(context.Background())

	result, err := svc.ProcessScan(context.Background(), scan.Event{
		Raw: "774053|GSAT Receiver|500.00", Source: scan.SourceQR, SessionID: sess.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Key != "774053" || !result.Matched {
		t.Fatalf("structured payload should match on its code segment: %+v", result)
	}
}

func TestProcessScanNoMatchIsNormal(t *testing.T) {
	svc, _, cue := newTestService(t, fixtureItem())
	sess, _ := svc.OpenSession(context.Background())

	result, err := svc.ProcessScan(context.Background(), scan.Event{
		Raw: "unknown-code", Source: scan.SourceOCR, SessionID: sess.ID,
	})
	if err != nil {
		t.Fatalf("no-match must not error: %v", err)
	}
	if result.Matched || result.Outcome != catalog.OutcomeNone {
		t.Fatalf("expected none outcome, got %+v", result)
	}
	if cue.calls != 0 {
		t.Fatal("cue must not fire without a match")
	}
}

func TestProcessScanPipeOnlyPayload(t *testing.T) {
	svc, _, _ := newTestService(t, fixtureItem())
	sess, _ := svc.OpenSession(context.Background())

	result, err := svc.ProcessScan(context.Background(), scan.Event{
		Raw: "|", Source: scan.SourceBarcode, SessionID: sess.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Key != "" || result.Matched {
		t.Fatalf("empty canonical key must attempt no match: %+v", result)
	}
}

func TestSaveEmptyBasketRejected(t *testing.T) {
	svc, repo, _ := newTestService(t, fixtureItem())
	sess, _ := svc.OpenSession(context.Background())

	_, err := svc.Save(context.Background(), sess.ID, SaveMetadata{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeEmptyBasket {
		t.Fatalf("expected empty basket rejection, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("empty basket save must not reach the store")
	}
}

func TestSaveClearsSessionOnSuccess(t *testing.T) {
	item := fixtureItem()
	svc, repo, _ := newTestService(t, item)
	sess, _ := svc.OpenSession(context.Background())

	if _, err := svc.AddItemByID(context.Background(), sess.ID, item.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}

	record, err := svc.Save(context.Background(), sess.ID, SaveMetadata{OperatorName: strPtr("maria")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(record.Lines) != 1 || !record.Total.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected record: %+v", record)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(repo.created))
	}

	state := sess.State()
	if len(state.Lines) != 0 || state.EditingID != nil {
		t.Fatalf("save success must clear session and editing flag: %+v", state)
	}
}

func TestSaveFailureLeavesSessionIntact(t *testing.T) {
	item := fixtureItem()
	svc, repo, _ := newTestService(t, item)
	repo.fail = errors.New("connection refused")
	sess, _ := svc.OpenSession(context.Background())

	_, _ = svc.AddItemByID(context.Background(), sess.ID, item.ID)

	_, err := svc.Save(context.Background(), sess.ID, SaveMetadata{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(sess.State().Lines) != 1 {
		t.Fatal("failed save must leave the basket intact for manual retry")
	}
}

func TestLoadRecordSetsEditingAndSaveReplaces(t *testing.T) {
	item := fixtureItem()
	svc, repo, _ := newTestService(t, item)
	sess, _ := svc.OpenSession(context.Background())

	existingID := uuid.New()
	repo.byID[existingID] = &models.SaleRecord{
		ID:    existingID,
		Total: decimal.NewFromInt(500),
		Lines: []models.SaleLine{{
			ItemID:    item.ID,
			ItemName:  item.Name,
			StockCode: item.StockCode,
			UnitPrice: item.UnitPrice,
			Quantity:  1,
			LineTotal: item.UnitPrice,
		}},
	}

	state, err := svc.LoadRecord(context.Background(), sess.ID, existingID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if state.EditingID == nil || *state.EditingID != existingID {
		t.Fatalf("editing flag not set: %+v", state)
	}
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 1 {
		t.Fatalf("record lines not loaded: %+v", state.Lines)
	}

	if _, err := svc.Save(context.Background(), sess.ID, SaveMetadata{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(repo.replaced) != 1 || repo.replaced[0].ID != existingID {
		t.Fatalf("editing save must replace the existing record, got %+v", repo.replaced)
	}
	if len(repo.created) != 0 {
		t.Fatal("editing save must not create a new record")
	}
}

func TestLoadRecordRejectedOverUnsavedLines(t *testing.T) {
	item := fixtureItem()
	svc, repo, _ := newTestService(t, item)
	sess, _ := svc.OpenSession(context.Background())

	existingID := uuid.New()
	repo.byID[existingID] = &models.SaleRecord{ID: existingID, Lines: []models.SaleLine{{
		ItemID: item.ID, ItemName: item.Name, StockCode: item.StockCode,
		UnitPrice: item.UnitPrice, Quantity: 2, LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(2)),
	}}}

	if _, err := svc.AddItemByID(context.Background(), sess.ID, item.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}

	_, err := svc.LoadRecord(context.Background(), sess.ID, existingID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	state := sess.State()
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 1 {
		t.Fatalf("rejected load must not touch the basket: %+v", state.Lines)
	}
	if state.EditingID != nil {
		t.Fatal("rejected load must not flip the editing flag")
	}
}

func TestLoadRecordSwapsWhileEditing(t *testing.T) {
	item := fixtureItem()
	svc, repo, _ := newTestService(t, item)
	sess, _ := svc.OpenSession(context.Background())

	firstID, secondID := uuid.New(), uuid.New()
	for id, qty := range map[uuid.UUID]int{firstID: 1, secondID: 2} {
		repo.byID[id] = &models.SaleRecord{ID: id, Lines: []models.SaleLine{{
			ItemID: item.ID, ItemName: item.Name, StockCode: item.StockCode,
			UnitPrice: item.UnitPrice, Quantity: qty,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		}}}
	}

	if _, err := svc.LoadRecord(context.Background(), sess.ID, firstID); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Loaded lines live in the store, so switching records loses nothing.
	state, err := svc.LoadRecord(context.Background(), sess.ID, secondID)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if state.EditingID == nil || *state.EditingID != secondID {
		t.Fatalf("editing flag should follow the new record: %+v", state)
	}
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 2 {
		t.Fatalf("second record lines not loaded: %+v", state.Lines)
	}
}

func TestClearResetsEditingAssociation(t *testing.T) {
	item := fixtureItem()
	svc, repo, _ := newTestService(t, item)
	sess, _ := svc.OpenSession(context.Background())

	existingID := uuid.New()
	repo.byID[existingID] = &models.SaleRecord{ID: existingID, Lines: []models.SaleLine{{
		ItemID: item.ID, ItemName: item.Name, StockCode: item.StockCode,
		UnitPrice: item.UnitPrice, Quantity: 1, LineTotal: item.UnitPrice,
	}}}
	_, _ = svc.LoadRecord(context.Background(), sess.ID, existingID)

	state, err := svc.Clear(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(state.Lines) != 0 || state.EditingID != nil || state.Total != "0.00" {
		t.Fatalf("clear must reset lines, total and editing flag: %+v", state)
	}
}

func TestSessionExpiry(t *testing.T) {
	mgr := NewManager(time.Minute)
	base := time.Now()
	mgr.now = func() time.Time { return base }

	sess := mgr.Open(catalog.NewSnapshot(nil, base))

	mgr.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := mgr.Get(sess.ID); err == nil {
		t.Fatal("expected idle session to be evicted")
	}
}
