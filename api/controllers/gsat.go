package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gsatlink/pos-backend/api/responses"
	"github.com/gsatlink/pos-backend/api/validators"
	"github.com/gsatlink/pos-backend/internal/export"
	gsatsvc "github.com/gsatlink/pos-backend/internal/gsat"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/logger"
)

func GSATCustomerList(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customers, cursor, err := svc.ListPage(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]customerResponse, 0, len(customers))
		for i := range customers {
			out = append(out, toCustomerResponse(&customers[i]))
		}
		responses.WriteSuccess(w, customerPageResponse{Items: out, Cursor: cursor})
	}
}

func GSATCustomerDetail(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetCustomer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := struct {
			customerResponse
			Activations []activationResponse `json:"activations"`
		}{customerResponse: toCustomerResponse(customer)}
		for i := range customer.Activations {
			resp.Activations = append(resp.Activations, toActivationResponse(&customer.Activations[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

type customerRequest struct {
	AccountNo  string  `json:"account_no" validate:"required"`
	BoxSerial  *string `json:"box_serial,omitempty"`
	CardSerial *string `json:"card_serial,omitempty"`
	FullName   string  `json:"full_name" validate:"required"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	Plan       *string `json:"plan,omitempty"`
}

func (r customerRequest) toInput() gsatsvc.CustomerInput {
	return gsatsvc.CustomerInput{
		AccountNo:  validators.SanitizeString(r.AccountNo, 64),
		BoxSerial:  sanitizePtr(r.BoxSerial, 64),
		CardSerial: sanitizePtr(r.CardSerial, 64),
		FullName:   validators.SanitizeString(r.FullName, 200),
		Phone:      sanitizePtr(r.Phone, 32),
		Address:    sanitizePtr(r.Address, 500),
		Plan:       sanitizePtr(r.Plan, 64),
	}
}

func GSATCustomerCreate(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.CreateCustomer(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCustomerResponse(customer))
	}
}

func GSATCustomerUpdate(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.UpdateCustomer(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCustomerResponse(customer))
	}
}

func GSATCustomerDelete(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCustomer(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type customerSearchResponse struct {
	Matched  bool              `json:"matched"`
	Outcome  string            `json:"outcome"`
	Customer *customerResponse `json:"customer,omitempty"`
}

// GSATCustomerSearch resolves a scanned card, box or account code to a
// customer. A miss is a normal 200 with matched=false.
func GSATCustomerSearch(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "q parameter required"))
			return
		}

		result, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := customerSearchResponse{
			Matched: result.Customer != nil,
			Outcome: string(result.Outcome),
		}
		if result.Customer != nil {
			customer := toCustomerResponse(result.Customer)
			resp.Customer = &customer
		}
		responses.WriteSuccess(w, resp)
	}
}

type activationRequest struct {
	Kind        string  `json:"kind" validate:"required"`
	Amount      string  `json:"amount" validate:"required"`
	Reference   *string `json:"reference,omitempty"`
	ActivatedAt *string `json:"activated_at,omitempty"`
}

func GSATActivationCreate(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := pathUUID(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload activationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		input := gsatsvc.ActivationInput{
			Kind:      payload.Kind,
			Amount:    amount,
			Reference: payload.Reference,
		}
		if payload.ActivatedAt != nil {
			at, parseErr := time.Parse(time.RFC3339, *payload.ActivatedAt)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid activated_at"))
				return
			}
			input.ActivatedAt = at
		}

		record, err := svc.RecordActivation(r.Context(), customerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toActivationResponse(record))
	}
}

// GSATActivationList returns a customer's activation history, newest first.
func GSATActivationList(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := pathUUID(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListActivations(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]activationResponse, 0, len(records))
		for i := range records {
			out = append(out, toActivationResponse(&records[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func GSATActivationDelete(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "activationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteActivation(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GSATExport streams the full customer and activation book as a workbook.
func GSATExport(svc gsatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Detail endpoints preload activations; the list does not, so pull
		// each customer's history before writing.
		for i := range customers {
			full, loadErr := svc.GetCustomer(r.Context(), customers[i].ID)
			if loadErr != nil {
				responses.WriteError(r.Context(), logg, w, loadErr)
				return
			}
			customers[i].Activations = full.Activations
		}

		filename := fmt.Sprintf("gsat-customers-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		if err := export.WriteCustomersXLSX(customers, w); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "export.write_failed", err)
			}
		}
	}
}
