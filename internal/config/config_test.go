package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLA_DEFAULT_FIRST_RESPONSE_HOURS", "")
	t.Setenv("SLA_DEFAULT_RESOLUTION_HOURS", "")
	t.Setenv("SLA_SCAN_INTERVAL_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.SLA.DefaultFirstResponseHours)
	assert.Equal(t, 24.0, cfg.SLA.DefaultResolutionHours)
	assert.Equal(t, 5*time.Minute, cfg.SLA.ScanInterval())
}

func TestLoadRejectsMalformedHours(t *testing.T) {
	t.Setenv("SLA_DEFAULT_RESOLUTION_HOURS", "a day")
	_, err := Load()
	require.Error(t, err)
}

func TestWorkWeek(t *testing.T) {
	s := SLAConfig{
		WorkDays:      "Mon, tue,WED",
		WorkStartHour: 8,
		WorkEndHour:   16,
		Timezone:      "UTC",
		Holidays:      "2024-12-25, 2024-12-26",
	}
	week, err := s.WorkWeek()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}, week.Days)
	assert.Equal(t, 8, week.StartHour)
	assert.Equal(t, 16, week.EndHour)
	require.Len(t, week.Holidays, 2)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), week.Holidays[0])
}

func TestWorkWeekErrors(t *testing.T) {
	_, err := SLAConfig{WorkDays: "mon,someday", Timezone: "UTC"}.WorkWeek()
	require.Error(t, err)

	_, err = SLAConfig{WorkDays: "mon", Timezone: "Mars/Olympus"}.WorkWeek()
	require.Error(t, err)

	_, err = SLAConfig{WorkDays: "mon", Timezone: "UTC", Holidays: "25/12/2024"}.WorkWeek()
	require.Error(t, err)
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadTargetsFile(t *testing.T) {
	path := writeFile(t, `
default:
  first_response_hours: 6
  resolution_hours: 48
targets:
  - customer_tier: enterprise
    priority: critical
    first_response_hours: 0.5
    resolution_hours: 4
  - customer_tier: premium
    priority: high
    first_response_hours: 1
    resolution_hours: 8
`)
	file, err := LoadTargetsFile(path)
	require.NoError(t, err)
	require.Len(t, file.Targets, 2)
	assert.Equal(t, domain.SLATarget{
		CustomerTier:       domain.CustomerTierEnterprise,
		Priority:           domain.TicketPriorityCritical,
		FirstResponseHours: 0.5,
		ResolutionHours:    4,
	}, file.Targets[0])

	def, ok := file.DefaultHours()
	require.True(t, ok)
	assert.Equal(t, 48.0, def.Resolution)
}

func TestLoadTargetsFileRejectsUnknownValues(t *testing.T) {
	path := writeFile(t, `
targets:
  - customer_tier: gold
    priority: high
    first_response_hours: 1
    resolution_hours: 8
`)
	_, err := LoadTargetsFile(path)
	require.ErrorContains(t, err, "unknown customer tier")

	_, err = LoadTargetsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTargetsFileWithoutDefault(t *testing.T) {
	file, err := LoadTargetsFile(writeFile(t, "targets: []\n"))
	require.NoError(t, err)
	_, ok := file.DefaultHours()
	assert.False(t, ok)
}
