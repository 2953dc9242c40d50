package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsatlink/pos-backend/api/responses"
	"github.com/gsatlink/pos-backend/api/validators"
	basketsvc "github.com/gsatlink/pos-backend/internal/basket"
	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/logger"
)

// BasketOpen starts a new basket session against a fresh catalog snapshot.
func BasketOpen(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.OpenSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toBasketStateResponse(sess.State()))
	}
}

func BasketGet(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.GetSession(chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBasketStateResponse(sess.State()))
	}
}

type basketScanRequest struct {
	Raw    string `json:"raw" validate:"required"`
	Source string `json:"source,omitempty"`
}

type basketScanResponse struct {
	Key     string              `json:"key"`
	Matched bool                `json:"matched"`
	Outcome string              `json:"outcome"`
	Item    *itemResponse       `json:"item,omitempty"`
	Warning string              `json:"warning,omitempty"`
	State   basketStateResponse `json:"state"`
}

// BasketScan processes one scan synchronously. An unmatched scan is a normal
// 200 with matched=false; only session or store failures error.
func BasketScan(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload basketScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source := scan.Source(payload.Source)
		if source == "" {
			source = scan.SourceBarcode
		}

		result, err := svc.ProcessScan(r.Context(), scan.Event{
			Raw:       payload.Raw,
			Source:    source,
			SessionID: chi.URLParam(r, "sessionID"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := basketScanResponse{
			Key:     result.Key,
			Matched: result.Matched,
			Outcome: string(result.Outcome),
			Warning: result.Warning,
			State:   toBasketStateResponse(result.State),
		}
		if result.Item != nil {
			item := toItemResponse(*result.Item)
			resp.Item = &item
		}
		responses.WriteSuccess(w, resp)
	}
}

type basketAddItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// BasketAddItem adds one unit of a catalog item picked from the UI.
func BasketAddItem(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload basketAddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDValue(payload.ItemID, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.AddItemByID(r.Context(), chi.URLParam(r, "sessionID"), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBasketStateResponse(state))
	}
}

type basketQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// BasketSetQuantity sets a line quantity exactly; zero or below removes it.
func BasketSetQuantity(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := pathIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload basketQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetQuantity(r.Context(), chi.URLParam(r, "sessionID"), index, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBasketStateResponse(state))
	}
}

func BasketRemoveLine(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := pathIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RemoveLine(r.Context(), chi.URLParam(r, "sessionID"), index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBasketStateResponse(state))
	}
}

func BasketClear(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.Clear(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBasketStateResponse(state))
	}
}

// BasketLoadRecord pulls an existing sale into the session for editing.
func BasketLoadRecord(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := pathUUID(r, "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.LoadRecord(r.Context(), chi.URLParam(r, "sessionID"), recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBasketStateResponse(state))
	}
}

type basketSaveRequest struct {
	OperatorName *string `json:"operator_name,omitempty"`
	CustomerName *string `json:"customer_name,omitempty"`
	Note         *string `json:"note,omitempty"`
}

// BasketSave persists the basket as a sale record and clears the session.
func BasketSave(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload basketSaveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Save(r.Context(), chi.URLParam(r, "sessionID"), basketsvc.SaveMetadata{
			OperatorName: sanitizePtr(payload.OperatorName, 120),
			CustomerName: sanitizePtr(payload.CustomerName, 120),
			Note:         sanitizePtr(payload.Note, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toSaleResponse(record))
	}
}

func pathIndex(r *http.Request) (int, error) {
	return parseIntValue(chi.URLParam(r, "index"), "index")
}
