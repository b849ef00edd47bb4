package httpapi

import (
	"bytes"
	"fmt"

	"labtrack-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

// JobsExportHeader is the column order of the jobs export workbook.
var JobsExportHeader = []string{
	"Job Type",
	"Practice",
	"Doctor",
	"Patient",
	"Lab Slip #",
	"Status",
	"Due Date",
	"Shade",
	"Invoice #",
	"Delivery Info",
	"Comments",
}

var jobsExportColumnWidths = []float64{
	15, // Job Type
	25, // Practice
	25, // Doctor
	25, // Patient
	15, // Lab Slip #
	22, // Status
	14, // Due Date
	12, // Shade
	15, // Invoice #
	30, // Delivery Info
	40, // Comments
}

// GenerateJobsExport renders the listing as an .xlsx workbook: one sheet,
// styled frozen header row, one row per job. Dates use DD/MM/YYYY.
func GenerateJobsExport(jobs []*domain.Job) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close(): WriteTo needs the file open.

	sheetName := "Jobs"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range JobsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range jobsExportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, job := range jobs {
		row := rowIdx + 2 // row 1 is the header
		dueDate := ""
		if job.DueDate.Valid {
			dueDate = job.DueDate.Time.Format("02/01/2006")
		}
		values := []any{
			job.JobType,
			job.PracticeName,
			job.DoctorName,
			job.PatientName,
			job.LabSlipNumber,
			job.JobStatus,
			dueDate,
			job.Shade,
			job.InvoiceNumber,
			job.DeliveryInfo,
			job.Comments,
		}
		for col, value := range values {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	// File must remain open during WriteTo.
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
