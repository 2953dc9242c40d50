package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gsatlink/pos-backend/api/responses"
	"github.com/gsatlink/pos-backend/api/validators"
	catalogsvc "github.com/gsatlink/pos-backend/internal/catalog"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/logger"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

// CatalogList returns one cursor page of active catalog items.
func CatalogList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, cursor, err := svc.ListPage(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalogPageResponse{Items: toItemResponses(items), Cursor: cursor})
	}
}

// CatalogRefresh forces a snapshot reload from the store (the manual refresh
// affordance for stale stock bounds).
func CatalogRefresh(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.RefreshSnapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items":     snapshot.Len(),
			"loaded_at": snapshot.LoadedAt,
		})
	}
}

type catalogItemRequest struct {
	Name         string   `json:"name" validate:"required"`
	Brand        *string  `json:"brand,omitempty"`
	StockCode    string   `json:"stock_code" validate:"required"`
	SerialNo     *string  `json:"serial_no,omitempty"`
	Barcode      *string  `json:"barcode,omitempty"`
	ExtraCodes   []string `json:"extra_codes,omitempty"`
	UnitPrice    string   `json:"unit_price" validate:"required"`
	AvailableQty int      `json:"available_qty" validate:"min=0"`
}

func (r catalogItemRequest) toInput() (catalogsvc.ItemInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.UnitPrice))
	if err != nil {
		return catalogsvc.ItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}
	return catalogsvc.ItemInput{
		Name:         r.Name,
		Brand:        r.Brand,
		StockCode:    r.StockCode,
		SerialNo:     r.SerialNo,
		Barcode:      r.Barcode,
		ExtraCodes:   r.ExtraCodes,
		UnitPrice:    price,
		AvailableQty: r.AvailableQty,
	}, nil
}

func CatalogCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toItemResponse(*item))
	}
}

func CatalogUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toItemResponse(*item))
	}
}

func CatalogDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
