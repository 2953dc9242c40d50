package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/gsatlink/pos-backend/internal/basket"
	"github.com/gsatlink/pos-backend/pkg/db/models"
)

type itemResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Brand        *string   `json:"brand,omitempty"`
	StockCode    string    `json:"stock_code"`
	SerialNo     *string   `json:"serial_no,omitempty"`
	Barcode      *string   `json:"barcode,omitempty"`
	ExtraCodes   []string  `json:"extra_codes,omitempty"`
	UnitPrice    string    `json:"unit_price"`
	AvailableQty int       `json:"available_qty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toItemResponse(item models.CatalogItem) itemResponse {
	return itemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Brand:        item.Brand,
		StockCode:    item.StockCode,
		SerialNo:     item.SerialNo,
		Barcode:      item.Barcode,
		ExtraCodes:   item.ExtraCodes,
		UnitPrice:    item.UnitPrice.StringFixed(2),
		AvailableQty: item.AvailableQty,
		CreatedAt:    item.CreatedAt,
	}
}

func toItemResponses(items []models.CatalogItem) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

type catalogPageResponse struct {
	Items  []itemResponse `json:"items"`
	Cursor string         `json:"cursor"`
}

type salesPageResponse struct {
	Items  []saleResponse `json:"items"`
	Cursor string         `json:"cursor"`
}

type customerPageResponse struct {
	Items  []customerResponse `json:"items"`
	Cursor string             `json:"cursor"`
}

type lineResponse struct {
	Item      itemResponse `json:"item"`
	Quantity  int          `json:"quantity"`
	LineTotal string       `json:"line_total"`
}

type basketStateResponse struct {
	SessionID       string         `json:"session_id"`
	Lines           []lineResponse `json:"lines"`
	Total           string         `json:"total"`
	EditingRecordID *uuid.UUID     `json:"editing_record_id,omitempty"`
	CatalogLoadedAt time.Time      `json:"catalog_loaded_at"`
}

func toBasketStateResponse(state basket.State) basketStateResponse {
	lines := make([]lineResponse, 0, len(state.Lines))
	for _, line := range state.Lines {
		lines = append(lines, lineResponse{
			Item:      toItemResponse(line.Item),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(2),
		})
	}
	return basketStateResponse{
		SessionID:       state.ID,
		Lines:           lines,
		Total:           state.Total,
		EditingRecordID: state.EditingID,
		CatalogLoadedAt: state.LoadedAt,
	}
}

type saleLineResponse struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	StockCode string    `json:"stock_code"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal string    `json:"line_total"`
}

type saleResponse struct {
	ID           uuid.UUID          `json:"id"`
	OperatorName *string            `json:"operator_name,omitempty"`
	CustomerName *string            `json:"customer_name,omitempty"`
	Note         *string            `json:"note,omitempty"`
	Total        string             `json:"total"`
	Lines        []saleLineResponse `json:"lines"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toSaleResponse(record *models.SaleRecord) saleResponse {
	lines := make([]saleLineResponse, 0, len(record.Lines))
	for _, line := range record.Lines {
		lines = append(lines, saleLineResponse{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			StockCode: line.StockCode,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal.StringFixed(2),
		})
	}
	return saleResponse{
		ID:           record.ID,
		OperatorName: record.OperatorName,
		CustomerName: record.CustomerName,
		Note:         record.Note,
		Total:        record.Total.StringFixed(2),
		Lines:        lines,
		CreatedAt:    record.CreatedAt,
	}
}

type customerResponse struct {
	ID         uuid.UUID `json:"id"`
	AccountNo  string    `json:"account_no"`
	BoxSerial  *string   `json:"box_serial,omitempty"`
	CardSerial *string   `json:"card_serial,omitempty"`
	FullName   string    `json:"full_name"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	Plan       *string   `json:"plan,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCustomerResponse(customer *models.GSATCustomer) customerResponse {
	return customerResponse{
		ID:         customer.ID,
		AccountNo:  customer.AccountNo,
		BoxSerial:  customer.BoxSerial,
		CardSerial: customer.CardSerial,
		FullName:   customer.FullName,
		Phone:      customer.Phone,
		Address:    customer.Address,
		Plan:       customer.Plan,
		CreatedAt:  customer.CreatedAt,
	}
}

type activationResponse struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Kind        string    `json:"kind"`
	Amount      string    `json:"amount"`
	Reference   *string   `json:"reference,omitempty"`
	ActivatedAt time.Time `json:"activated_at"`
}

func toActivationResponse(record *models.ActivationRecord) activationResponse {
	return activationResponse{
		ID:          record.ID,
		CustomerID:  record.CustomerID,
		Kind:        record.Kind,
		Amount:      record.Amount.StringFixed(2),
		Reference:   record.Reference,
		ActivatedAt: record.ActivatedAt,
	}
}
