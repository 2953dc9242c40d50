package basket

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/internal/catalog"
	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CueSink receives the confirmation call-out on a successful match. The API
// implementation reflects it back to the UI; hardware integrations can beep.
type CueSink interface {
	Matched(ctx context.Context, sessionID string, item models.CatalogItem, outcome catalog.Outcome)
}

// NoopCue discards confirmation cues.
type NoopCue struct{}

func (NoopCue) Matched(context.Context, string, models.CatalogItem, catalog.Outcome) {}

// SaveMetadata carries the operator-entered fields persisted with a sale.
type SaveMetadata struct {
	OperatorName *string
	CustomerName *string
	Note         *string
}

// ScanResult reports what one scan did to the session.
type ScanResult struct {
	Key     string
	Matched bool
	Outcome catalog.Outcome
	Item    *models.CatalogItem
	Warning string
	State   State
}

// Service drives basket sessions: scan processing, line edits and saves.
type Service interface {
	OpenSession(ctx context.Context) (*Session, error)
	GetSession(sessionID string) (*Session, error)
	LoadRecord(ctx context.Context, sessionID string, recordID uuid.UUID) (State, error)
	ProcessScan(ctx context.Context, ev scan.Event) (*ScanResult, error)
	AddItemByID(ctx context.Context, sessionID string, itemID uuid.UUID) (State, error)
	SetQuantity(ctx context.Context, sessionID string, index, quantity int) (State, error)
	RemoveLine(ctx context.Context, sessionID string, index int) (State, error)
	Clear(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, meta SaveMetadata) (*models.SaleRecord, error)
}

type service struct {
	catalogSvc catalog.Service
	sessions   *Manager
	repo       Repository
	tx         txRunner
	cue        CueSink
	metrics    *metrics.PipelineMetrics
}

// NewService builds a basket service backed by the provided stack. Cue and
// metrics are optional.
func NewService(catalogSvc catalog.Service, sessions *Manager, repo Repository, tx txRunner, cue CueSink, m *metrics.PipelineMetrics) (Service, error) {
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sale repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cue == nil {
		cue = NoopCue{}
	}
	return &service{
		catalogSvc: catalogSvc,
		sessions:   sessions,
		repo:       repo,
		tx:         tx,
		cue:        cue,
		metrics:    m,
	}, nil
}

// OpenSession loads a fresh catalog snapshot and binds a new session to it.
func (s *service) OpenSession(ctx context.Context) (*Session, error) {
	snapshot, err := s.catalogSvc.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessions.Open(snapshot), nil
}

func (s *service) GetSession(sessionID string) (*Session, error) {
	return s.sessions.Get(sessionID)
}

// LoadRecord pulls an existing sale into the session and flips the editing
// flag. Lines whose item no longer exists in the snapshot keep their stored
// snapshot fields but get a zero stock bound, so they can only be removed.
// A session holding unsaved lines refuses the load; already-loaded records
// may be swapped freely since their lines are recoverable from the store.
func (s *service) LoadRecord(ctx context.Context, sessionID string, recordID uuid.UUID) (State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return State{}, err
	}

	var pending bool
	_ = sess.WithAggregator(func(agg *Aggregator) error {
		pending = len(agg.Lines()) > 0
		return nil
	})
	if pending && sess.EditingID() == nil {
		return State{}, pkgerrors.New(pkgerrors.CodeStateConflict, "basket has unsaved lines; save or clear it first")
	}

	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return State{}, pkgerrors.New(pkgerrors.CodeNotFound, "sale record not found")
		}
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale record")
	}

	err = sess.WithAggregator(func(agg *Aggregator) error {
		agg.Clear()
		for _, line := range record.Lines {
			item, ok := sess.Snapshot.ItemByID(line.ItemID)
			if !ok {
				item = models.CatalogItem{
					ID:        line.ItemID,
					Name:      line.ItemName,
					StockCode: line.StockCode,
					UnitPrice: line.UnitPrice,
				}
			}
			agg.lines = append(agg.lines, Line{Item: item, Quantity: line.Quantity})
		}
		return nil
	})
	if err != nil {
		return State{}, err
	}

	sess.SetEditing(record.ID)
	return sess.State(), nil
}

// ProcessScan runs normalize then match then add for one scan event. A
// no-match is a normal outcome; a stock rejection surfaces as a warning on a
// still-matched result.
func (s *service) ProcessScan(ctx context.Context, ev scan.Event) (*ScanResult, error) {
	sess, err := s.sessions.Get(ev.SessionID)
	if err != nil {
		return nil, err
	}

	key := scan.Normalize(ev.Raw)
	result := &ScanResult{Key: key, Outcome: catalog.OutcomeNone}
	if key == "" {
		result.State = sess.State()
		return result, nil
	}

	item, outcome := sess.Snapshot.MatchItem(key)
	result.Outcome = outcome
	s.metrics.IncMatch(string(outcome))

	if outcome == catalog.OutcomeNone {
		result.State = sess.State()
		return result, nil
	}

	result.Matched = true
	result.Item = &item
	s.cue.Matched(ctx, sess.ID, item, outcome)

	err = sess.WithAggregator(func(agg *Aggregator) error {
		return agg.AddItem(item)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStockExceeded {
			result.Warning = typed.Message()
		} else {
			return nil, err
		}
	}

	result.State = sess.State()
	return result, nil
}

func (s *service) AddItemByID(ctx context.Context, sessionID string, itemID uuid.UUID) (State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return State{}, err
	}
	item, ok := sess.Snapshot.ItemByID(itemID)
	if !ok {
		return State{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not in catalog snapshot")
	}
	if err := sess.WithAggregator(func(agg *Aggregator) error { return agg.AddItem(item) }); err != nil {
		return State{}, err
	}
	return sess.State(), nil
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, index, quantity int) (State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return State{}, err
	}
	if err := sess.WithAggregator(func(agg *Aggregator) error { return agg.SetQuantity(index, quantity) }); err != nil {
		return State{}, err
	}
	return sess.State(), nil
}

func (s *service) RemoveLine(ctx context.Context, sessionID string, index int) (State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return State{}, err
	}
	if err := sess.WithAggregator(func(agg *Aggregator) error { return agg.RemoveLine(index) }); err != nil {
		return State{}, err
	}
	return sess.State(), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) (State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return State{}, err
	}
	sess.ClearAll()
	return sess.State(), nil
}

// Save persists the basket atomically. On success the session is cleared and
// the editing flag reset; on failure the in-memory state is left intact so
// the operator can retry manually.
func (s *service) Save(ctx context.Context, sessionID string, meta SaveMetadata) (*models.SaleRecord, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var lines []Line
	_ = sess.WithAggregator(func(agg *Aggregator) error {
		lines = agg.Lines()
		return nil
	})

	if len(lines) == 0 {
		s.metrics.IncSave("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeEmptyBasket, "basket is empty")
	}

	record := buildSaleRecord(lines, meta)
	editingID := sess.EditingID()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if editingID != nil {
			record.ID = *editingID
			return s.repo.Replace(ctx, tx, record)
		}
		return s.repo.Create(ctx, tx, record)
	})
	if err != nil {
		s.metrics.IncSave("failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale record no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist sale")
	}

	s.metrics.IncSave("ok")
	sess.ClearAll()
	return record, nil
}

func buildSaleRecord(lines []Line, meta SaveMetadata) *models.SaleRecord {
	record := &models.SaleRecord{
		OperatorName: meta.OperatorName,
		CustomerName: meta.CustomerName,
		Note:         meta.Note,
	}
	var agg Aggregator
	agg.lines = lines
	record.Total = agg.Total()

	record.Lines = make([]models.SaleLine, 0, len(lines))
	for _, line := range lines {
		record.Lines = append(record.Lines, models.SaleLine{
			ItemID:    line.Item.ID,
			ItemName:  line.Item.Name,
			StockCode: line.Item.StockCode,
			UnitPrice: line.Item.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal(),
		})
	}
	return record
}
