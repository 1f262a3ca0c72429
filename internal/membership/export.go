package membership

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Membresias"

// ExportContentType is the MIME type of the workbook written by WriteWorkbook.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []interface{}{
	"No.", "Nombre", "Teléfono", "Fecha inscripción", "Último pago", "Método de pago",
	"Administrador", "No. recibo", "Plan", "Vence", "Estado", "Días en mora",
}

// WriteWorkbook writes rows as a single-sheet xlsx workbook to w.
func WriteWorkbook(w io.Writer, rows []Detail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "L1", header); err != nil {
		return err
	}

	for i, d := range rows {
		manager := ""
		if d.ManagerName != nil {
			manager = *d.ManagerName
		}
		row := []interface{}{
			i + 1, d.UserName, d.Phone, d.EnrolledAt, d.LastPayment, d.MethodName,
			manager, d.ReceiptNumber, d.PlanDescription, d.ExpirationDate, d.StateName, d.DaysArrears,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 6); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "B", "L", 18); err != nil {
		return err
	}

	return f.Write(w)
}
