package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// SLAService is the read side of the SLA engine used by the handler.
type SLAService interface {
	ScanBreaches(ctx context.Context) ([]domain.BreachRecord, error)
	BuildReport(ctx context.Context, start, end time.Time, category *string) (domain.SLAReport, error)
	Targets() ([]domain.SLATarget, *sla.Hours)
}

// SLAHandler serves compliance reports, breach scans and the target table.
type SLAHandler struct {
	service SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// Report GET /api/reports/sla. Responds with JSON unless format=xlsx.
func (h *SLAHandler) Report(c *fiber.Ctx) error {
	start, err := parseTimeQuery(c, "start_date")
	if err != nil {
		return err
	}
	end, err := parseTimeQuery(c, "end_date")
	if err != nil {
		return err
	}
	var category *string
	if v := c.Query("category"); v != "" {
		category = &v
	}

	report, err := h.service.BuildReport(c.UserContext(), start, end, category)
	if err != nil {
		return err
	}
	resp := dto.NewSLAReportResponse(report)

	switch strings.ToLower(c.Query("format", "json")) {
	case "json":
		return c.JSON(resp)
	case "xlsx":
		body, err := reportWorkbook(resp)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		fileName := fmt.Sprintf("sla_report_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, "attachment; filename="+fileName)
		return c.Send(body)
	default:
		return apperrors.NewValidationError("unsupported format", map[string]any{"format": c.Query("format")})
	}
}

// Breaches GET /api/sla/breaches. breach_duration uses Go duration syntax
// ("1h30m0s"), not "H:MM:SS"; breach_duration_hours carries the same value
// as a number.
func (h *SLAHandler) Breaches(c *fiber.Ctx) error {
	breaches, err := h.service.ScanBreaches(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBreachRecordResponses(breaches))
}

// Targets GET /api/sla/targets.
func (h *SLAHandler) Targets(c *fiber.Ctx) error {
	targets, fallback := h.service.Targets()
	return c.JSON(fiber.Map{"data": dto.NewSLATargetsResponse(targets, fallback)})
}

var queryTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseTimeQuery accepts RFC 3339, a naive timestamp or a bare date. Values
// without an offset are read as UTC.
func parseTimeQuery(c *fiber.Ctx, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(key+" is required", map[string]any{key: "required"})
	}
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError("invalid "+key, map[string]any{key: raw})
}
