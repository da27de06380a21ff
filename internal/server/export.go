package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"helpdesk/internal/models"
)

const (
	exportSheet = "Tickets"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{"ID", "Subject", "Category", "Priority", "Status", "State", "Created by", "Created", "Updated", "Completed"}

// handleExportTickets streams the tickets matching the list filters as an
// XLSX workbook.
func (s *Server) handleExportTickets(c *gin.Context) {
	q, ok := bindTicketQuery(c)
	if !ok {
		return
	}
	tickets, err := s.svc.ExportTickets(c.Request.Context(), callerID(c), q.filter())
	if err != nil {
		s.respondError(c, err)
		return
	}

	f, err := ticketWorkbook(tickets)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer f.Close()

	timestamp := time.Now().UTC().Format("20060102-150405")
	c.Header("Content-Type", xlsxType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"tickets-%s.xlsx\"", timestamp))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		s.logger.Error("export write failed", "error", err)
	}
}

func ticketWorkbook(tickets []models.Ticket) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, t := range tickets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			t.ID,
			t.Subject,
			refName(t.Category),
			refName(t.Priority),
			refName(t.Status),
			ticketState(t),
			userName(t.CreatedBy),
			formatTime(&t.CreatedAt),
			formatTime(t.UpdatedAt),
			formatTime(t.CompletedAt),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func ticketState(t models.Ticket) string {
	if t.Completed() {
		return "completed"
	}
	return "open"
}

func refName(r *models.LookupRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func userName(u *models.UserRef) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
