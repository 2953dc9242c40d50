package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gsatlink/pos-backend/pkg/db/models"
)

// WriteCustomersXLSX streams a workbook with one customer sheet and one
// activation sheet. Customers arrive with their activations preloaded.
func WriteCustomersXLSX(customers []models.GSATCustomer, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Customers"); err != nil {
		return err
	}
	if _, err := f.NewSheet("Activations"); err != nil {
		return err
	}

	customerHeaders := []string{
		"account_no", "full_name", "box_serial", "card_serial",
		"phone", "address", "plan", "created_at",
	}
	for i, h := range customerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue("Customers", cell, h)
	}

	for i, customer := range customers {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue("Customers", cell, value)
		}
		set(1, customer.AccountNo)
		set(2, customer.FullName)
		set(3, derefString(customer.BoxSerial))
		set(4, derefString(customer.CardSerial))
		set(5, derefString(customer.Phone))
		set(6, derefString(customer.Address))
		set(7, derefString(customer.Plan))
		set(8, customer.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	activationHeaders := []string{
		"account_no", "full_name", "kind", "amount", "reference", "activated_at",
	}
	for i, h := range activationHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue("Activations", cell, h)
	}

	row := 2
	for _, customer := range customers {
		for _, activation := range customer.Activations {
			set := func(col int, value any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue("Activations", cell, value)
			}
			set(1, customer.AccountNo)
			set(2, customer.FullName)
			set(3, activation.Kind)
			set(4, activation.Amount.StringFixed(2))
			set(5, derefString(activation.Reference))
			set(6, activation.ActivatedAt.Format("2006-01-02 15:04:05"))
			row++
		}
	}

	return f.Write(w)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
