package service

import (
	"bytes"
	"fmt"

	"staywise-data/internal/repository"

	"github.com/xuri/excelize/v2"
)

// rentExportHeader 账单导出表头
var rentExportHeader = []string{
	"Tenant Code",
	"Tenant Name",
	"Tenant Email",
	"Building",
	"Room",
	"Bed",
	"Amount",
	"Status",
	"Paid At",
	"Payment Method",
	"Reference",
	"Note",
}

// rentExportWidths 导出列宽
var rentExportWidths = []float64{
	15, // Tenant Code
	20, // Tenant Name
	25, // Tenant Email
	20, // Building
	12, // Room
	10, // Bed
	12, // Amount
	10, // Status
	20, // Paid At
	15, // Payment Method
	20, // Reference
	30, // Note
}

func rentExportFilename(year, month int) string {
	return fmt.Sprintf("rent-%04d-%02d.xlsx", year, month)
}

// buildRentWorkbook 生成账期账单 Excel 文件
func buildRentWorkbook(year, month int, rows []repository.RentRow) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := fmt.Sprintf("Rent %04d-%02d", year, month)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close() // Close on error
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 设置表头样式
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

	// 写入表头
	for col, header := range rentExportHeader {
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

	// 设置列宽
	for i := range rentExportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(rentExportWidths) {
			if err := f.SetColWidth(sheetName, col, col, rentExportWidths[i]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	// 写入数据
	for rowIdx, r := range rows {
		row := rowIdx + 2 // 从第2行开始（第1行是表头）
		paidAt := ""
		if r.Payment.PaidAt.Valid {
			paidAt = r.Payment.PaidAt.Time.Format("2006-01-02 15:04:05")
		}
		values := []any{
			r.TenantCode,
			r.TenantName,
			r.TenantEmail,
			r.BuildingName,
			r.RoomNumber,
			r.BedNumber,
			r.Payment.Amount,
			r.Payment.Status,
			paidAt,
			r.Payment.PaymentMethod.String,
			r.Payment.Reference.String,
			r.Payment.Note.String,
		}
		for col, value := range values {
			if value == nil || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
			}
		}
	}

	// 冻结表头
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

	// Note: File must remain open during Write operation
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}
