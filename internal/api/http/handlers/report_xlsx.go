package handlers

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var reportHeaders = []string{"Metric", "First response", "Resolution"}

func reportWorkbook(r dto.SLAReportResponse) ([]byte, error) {
	const sheet = "SLA Report"

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	category := "all"
	if r.Category != nil {
		category = *r.Category
	}
	rows := [][]any{
		{"Period start", r.Period.StartDate.Format("2006-01-02 15:04:05Z07:00")},
		{"Period end", r.Period.EndDate.Format("2006-01-02 15:04:05Z07:00")},
		{"Category", category},
		{"Total tickets", r.TotalTickets},
		{},
		{reportHeaders[0], reportHeaders[1], reportHeaders[2]},
		{"Compliance rate (%)", r.FirstResponseSLA.ComplianceRate, r.ResolutionSLA.ComplianceRate},
		{"Tickets met", r.FirstResponseSLA.TicketsMet, r.ResolutionSLA.TicketsMet},
		{"Average hours", r.FirstResponseSLA.AvgResponseTimeHours, r.ResolutionSLA.AvgResolutionTimeHours},
		{"Average business hours", r.FirstResponseSLA.AvgResponseBusinessHours, r.ResolutionSLA.AvgResolutionBusinessHours},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(sheet, "A1", "A10", bold)
	_ = f.SetCellStyle(sheet, "A6", "C6", bold)
	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "C", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
