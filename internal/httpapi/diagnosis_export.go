package httpapi

import (
	"bytes"
	"fmt"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/xuri/excelize/v2"
)

// DiagnosisExportSheet 导出工作表名称
const DiagnosisExportSheet = "Diagnoses"

// DiagnosisExportHeader 导出表头
var DiagnosisExportHeader = []string{
	"Diagnosis ID",
	"Patient ID",
	"Created At",
	"Final Class",
	"Disease",
	"Meta Class",
	"Confidence",
	"Rule",
	"Rule Level",
	"Overridden",
	"Fallback",
	"Risk Category",
	"NCM Index",
	"Model Version",
}

var diagnosisExportWidths = []float64{38, 20, 22, 12, 30, 12, 12, 28, 10, 12, 10, 14, 12, 18}

// GenerateDiagnosisExport 生成诊断历史 Excel 文件
// items 为空时只生成表头
func GenerateDiagnosisExport(items []*models.FinalDiagnosis) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(DiagnosisExportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
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
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range DiagnosisExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(DiagnosisExportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(DiagnosisExportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(DiagnosisExportSheet, name, name, diagnosisExportWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, d := range items {
		row := []interface{}{
			d.ID,
			d.PatientID,
			d.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			int(d.FinalClass),
			d.DiseaseName,
			int(d.MetaClass),
			d.Confidence,
			d.RuleID,
			d.RuleLevel,
			yesNo(d.RuleOverridden),
			yesNo(d.FallbackApplied),
			d.Assessment.RiskCategory,
			d.MetaFeatures.NCMIndex,
			d.ModelVersion,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(DiagnosisExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(DiagnosisExportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
