package gsat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/internal/catalog"
	"github.com/gsatlink/pos-backend/internal/scan"
	pkgdb "github.com/gsatlink/pos-backend/pkg/db"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

// Known activation kinds. Stored as plain strings; new kinds only need a
// constant here.
const (
	KindSubscription = "subscription"
	KindAirtimeLoad  = "airtime_load"
)

// CustomerInput carries the payload for customer intake.
type CustomerInput struct {
	AccountNo  string
	BoxSerial  *string
	CardSerial *string
	FullName   string
	Phone      *string
	Address    *string
	Plan       *string
}

// ActivationInput carries one activation or airtime load to record.
type ActivationInput struct {
	Kind        string
	Amount      decimal.Decimal
	Reference   *string
	ActivatedAt time.Time
}

// SearchResult pairs a located customer with how it was found.
type SearchResult struct {
	Customer *models.GSATCustomer
	Outcome  catalog.Outcome
}

// Service exposes GSAT customer management and scan-driven lookup.
type Service interface {
	ListPage(ctx context.Context, params pagination.Params) ([]models.GSATCustomer, string, error)
	ListAll(ctx context.Context) ([]models.GSATCustomer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.GSATCustomer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*models.GSATCustomer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.GSATCustomer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, raw string) (*SearchResult, error)
	RecordActivation(ctx context.Context, customerID uuid.UUID, input ActivationInput) (*models.ActivationRecord, error)
	ListActivations(ctx context.Context, customerID uuid.UUID) ([]models.ActivationRecord, error)
	DeleteActivation(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a GSAT service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gsat repository required")
	}
	return &service{repo: repo}, nil
}

// ListPage returns one page of customers plus the encoded cursor for the
// next page, empty when the last page was served.
func (s *service) ListPage(ctx context.Context, params pagination.Params) ([]models.GSATCustomer, string, error) {
	customers, next, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return customers, cursor, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.GSATCustomer, error) {
	customers, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return customers, nil
}

func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*models.GSATCustomer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CustomerInput) (*models.GSATCustomer, error) {
	if err := validateCustomerInput(input); err != nil {
		return nil, err
	}

	customer := &models.GSATCustomer{
		AccountNo:  strings.TrimSpace(input.AccountNo),
		BoxSerial:  trimPtr(input.BoxSerial),
		CardSerial: trimPtr(input.CardSerial),
		FullName:   strings.TrimSpace(input.FullName),
		Phone:      trimPtr(input.Phone),
		Address:    trimPtr(input.Address),
		Plan:       trimPtr(input.Plan),
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_gsat_customers_account_no") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.GSATCustomer, error) {
	if err := validateCustomerInput(input); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	customer.AccountNo = strings.TrimSpace(input.AccountNo)
	customer.BoxSerial = trimPtr(input.BoxSerial)
	customer.CardSerial = trimPtr(input.CardSerial)
	customer.FullName = strings.TrimSpace(input.FullName)
	customer.Phone = trimPtr(input.Phone)
	customer.Address = trimPtr(input.Address)
	customer.Plan = trimPtr(input.Plan)

	if err := s.repo.Update(ctx, customer); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_gsat_customers_account_no") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return customer, nil
}

func (s *service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

// Search resolves a scanned or typed code to a customer using the same
// two-pass strategy as catalog matching. Priority runs card serial, box
// serial, account number, then full name; the name participates in the exact
// pass only. A miss is a normal outcome.
func (s *service) Search(ctx context.Context, raw string) (*SearchResult, error) {
	key := scan.Normalize(raw)
	if key == "" {
		return &SearchResult{Outcome: catalog.OutcomeNone}, nil
	}

	customers, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}

	candidates := make([]customerCandidate, len(customers))
	for i := range customers {
		candidates[i] = customerCandidate{customer: customers[i]}
	}

	cand, outcome := catalog.Match(key, candidates)
	result := &SearchResult{Outcome: outcome}
	if outcome != catalog.OutcomeNone {
		found := cand.customer
		result.Customer = &found
	}
	return result, nil
}

func (s *service) RecordActivation(ctx context.Context, customerID uuid.UUID, input ActivationInput) (*models.ActivationRecord, error) {
	if err := validateActivationInput(input); err != nil {
		return nil, err
	}
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	record := &models.ActivationRecord{
		CustomerID:  customerID,
		Kind:        strings.TrimSpace(input.Kind),
		Amount:      input.Amount,
		Reference:   trimPtr(input.Reference),
		ActivatedAt: input.ActivatedAt,
	}
	if record.ActivatedAt.IsZero() {
		record.ActivatedAt = time.Now().UTC()
	}

	if err := s.repo.CreateActivation(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activation")
	}
	return record, nil
}

func (s *service) ListActivations(ctx context.Context, customerID uuid.UUID) ([]models.ActivationRecord, error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListActivations(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activations")
	}
	return records, nil
}

func (s *service) DeleteActivation(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteActivation(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "activation record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete activation")
	}
	return nil
}

// customerCandidate exposes a customer's comparable fields in the fixed
// priority order card serial, box serial, account number, then full name.
type customerCandidate struct {
	customer models.GSATCustomer
}

func (c customerCandidate) ExactFields() []string {
	return []string{
		deref(c.customer.CardSerial),
		deref(c.customer.BoxSerial),
		c.customer.AccountNo,
		c.customer.FullName,
	}
}

func (c customerCandidate) PartialFields() []string {
	return []string{
		deref(c.customer.CardSerial),
		deref(c.customer.BoxSerial),
		c.customer.AccountNo,
	}
}

func validateCustomerInput(input CustomerInput) error {
	if strings.TrimSpace(input.AccountNo) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account number is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	return nil
}

func validateActivationInput(input ActivationInput) error {
	kind := strings.TrimSpace(input.Kind)
	if kind != KindSubscription && kind != KindAirtimeLoad {
		return pkgerrors.New(pkgerrors.CodeValidation, "kind must be subscription or airtime_load")
	}
	if input.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	return nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
