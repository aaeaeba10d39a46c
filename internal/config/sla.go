package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// TargetsFile is the on-disk shape of SLA_TARGETS_FILE.
type TargetsFile struct {
	Default *struct {
		FirstResponseHours float64 `yaml:"first_response_hours"`
		ResolutionHours    float64 `yaml:"resolution_hours"`
	} `yaml:"default"`
	Targets []domain.SLATarget `yaml:"targets"`
}

// WorkWeek converts the SLA_* settings into a calendar schedule.
func (s SLAConfig) WorkWeek() (sla.WorkWeek, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(s.Timezone))
	if err != nil {
		return sla.WorkWeek{}, fmt.Errorf("invalid SLA_TIMEZONE: %w", err)
	}

	week := sla.WorkWeek{StartHour: s.WorkStartHour, EndHour: s.WorkEndHour, Location: loc}
	for _, raw := range splitList(s.WorkDays) {
		day, ok := weekdayNames[strings.ToLower(raw)]
		if !ok {
			return sla.WorkWeek{}, fmt.Errorf("invalid SLA_WORK_DAYS entry %q", raw)
		}
		week.Days = append(week.Days, day)
	}
	for _, raw := range splitList(s.Holidays) {
		day, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return sla.WorkWeek{}, fmt.Errorf("invalid SLA_HOLIDAYS entry %q: %w", raw, err)
		}
		week.Holidays = append(week.Holidays, day)
	}
	return week, nil
}

// DefaultHours is the fallback target pair from the environment.
func (s SLAConfig) DefaultHours() sla.Hours {
	return sla.Hours{FirstResponse: s.DefaultFirstResponseHours, Resolution: s.DefaultResolutionHours}
}

// LoadTargetsFile parses a YAML target table, rejecting unknown tiers and
// priorities.
func LoadTargetsFile(path string) (*TargetsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sla targets: %w", err)
	}
	var file TargetsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse sla targets %s: %w", path, err)
	}
	for i, t := range file.Targets {
		if !t.CustomerTier.Valid() {
			return nil, fmt.Errorf("sla targets %s: entry %d: unknown customer tier %q", path, i, t.CustomerTier)
		}
		if !t.Priority.Valid() {
			return nil, fmt.Errorf("sla targets %s: entry %d: unknown priority %q", path, i, t.Priority)
		}
	}
	return &file, nil
}

// DefaultHours returns the file's default block, if present.
func (f *TargetsFile) DefaultHours() (sla.Hours, bool) {
	if f == nil || f.Default == nil {
		return sla.Hours{}, false
	}
	return sla.Hours{FirstResponse: f.Default.FirstResponseHours, Resolution: f.Default.ResolutionHours}, true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
