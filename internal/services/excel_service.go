package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// ExcelService imports project milestones from spreadsheet exports. Column
// headers are matched loosely so exports from different PMO templates load
// without manual renaming.
type ExcelService struct {
	pmoSvc *PMOService
}

// NewExcelService creates a new excel import service
func NewExcelService(pmoSvc *PMOService) *ExcelService {
	return &ExcelService{pmoSvc: pmoSvc}
}

// ImportResult summarizes one spreadsheet import
type ImportResult struct {
	Created []models.Milestone     `json:"created"`
	Errors  []models.BatchRowError `json:"errors,omitempty"`
	Rows    int                    `json:"rows"`
}

// header aliases recognized per field, lowercased
var milestoneHeaderAliases = map[string][]string{
	"name":           {"name", "milestone", "hito", "nombre"},
	"description":    {"description", "descripcion", "descripción", "detail"},
	"date":           {"date", "milestone_date", "fecha", "due date", "deadline"},
	"status":         {"status", "estado"},
	"responsibility": {"responsibility", "responsable", "responsibility_type"},
	"delay_days":     {"delay_days", "delay", "dias atraso", "días atraso"},
	"impact":         {"financial_impact", "impact", "impacto"},
}

// ImportMilestones reads the first sheet of an xlsx payload and creates one
// milestone per data row. Rows that fail validation are reported and skipped;
// valid rows still import.
func (s *ExcelService) ImportMilestones(ctx context.Context, r io.Reader, projectID, createdBy int) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.InvalidInput("The file is not a readable xlsx spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.InvalidInput("The spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.InvalidInput("Failed to read the first sheet")
	}
	if len(rows) < 2 {
		return nil, apperrors.InvalidInput("The sheet has no data rows")
	}

	cols := mapHeaders(rows[0])
	if _, ok := cols["name"]; !ok {
		return nil, apperrors.InvalidInput("Could not find a milestone name column")
	}
	if _, ok := cols["date"]; !ok {
		return nil, apperrors.InvalidInput("Could not find a milestone date column")
	}

	result := &ImportResult{Rows: len(rows) - 1}
	for i, row := range rows[1:] {
		in := models.MilestoneInput{
			ProjectID:      projectID,
			Name:           cell(row, cols, "name"),
			Description:    cell(row, cols, "description"),
			MilestoneDate:  normalizeDate(cell(row, cols, "date")),
			Status:         normalizeStatus(cell(row, cols, "status")),
			Responsibility: normalizeResponsibility(cell(row, cols, "responsibility")),
		}
		if v := cell(row, cols, "delay_days"); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				result.Errors = append(result.Errors, models.BatchRowError{
					Index: i, Error: fmt.Sprintf("invalid delay days %q", v)})
				continue
			}
			in.DelayDays = n
		}
		if v := cell(row, cols, "impact"); v != "" {
			x, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
			if err != nil {
				result.Errors = append(result.Errors, models.BatchRowError{
					Index: i, Error: fmt.Sprintf("invalid financial impact %q", v)})
				continue
			}
			in.FinancialImpact = x
		}

		m, err := s.pmoSvc.CreateMilestone(ctx, &in, createdBy)
		if err != nil {
			result.Errors = append(result.Errors, models.BatchRowError{Index: i, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *m)
	}

	return result, nil
}

func mapHeaders(header []string) map[string]int {
	cols := make(map[string]int)
	for idx, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, aliases := range milestoneHeaderAliases {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					cols[field] = idx
				}
			}
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeDate accepts YYYY-MM-DD as-is and converts DD/MM/YYYY, the common
// export format of the PMO templates.
func normalizeDate(v string) string {
	if v == "" {
		return ""
	}
	parts := strings.Split(v, "/")
	if len(parts) == 3 && len(parts[2]) == 4 {
		day, month := parts[0], parts[1]
		if len(day) == 1 {
			day = "0" + day
		}
		if len(month) == 1 {
			month = "0" + month
		}
		return fmt.Sprintf("%s-%s-%s", parts[2], month, day)
	}
	return v
}

func normalizeStatus(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "completed", "done", "completado":
		return models.MilestoneStatusCompleted
	case "in_progress", "in progress", "en progreso":
		return models.MilestoneStatusInProgress
	case "":
		return ""
	default:
		return models.MilestoneStatusPending
	}
}

func normalizeResponsibility(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "client", "cliente":
		return models.ResponsibilityClient
	case "":
		return ""
	default:
		return models.ResponsibilityInternal
	}
}
