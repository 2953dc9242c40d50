package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/api/responses"
	basketsvc "github.com/gsatlink/pos-backend/internal/basket"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/logger"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

// SalesList returns one cursor page of persisted sale records.
func SalesList(repo basketsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, next, err := repo.ListPage(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor := ""
		if next != nil {
			cursor = pagination.EncodeCursor(*next)
		}

		out := make([]saleResponse, 0, len(records))
		for i := range records {
			out = append(out, toSaleResponse(&records[i]))
		}
		responses.WriteSuccess(w, salesPageResponse{Items: out, Cursor: cursor})
	}
}

func SalesDetail(repo basketsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := repo.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = pkgerrors.New(pkgerrors.CodeNotFound, "sale record not found")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSaleResponse(record))
	}
}
