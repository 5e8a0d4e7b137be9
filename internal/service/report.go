package service

import (
	"fmt"
	"time"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/report"
	"github.com/skilltrack/skilltrack/internal/storage"
)

// ReportService computes time aggregations over the current user's
// completed sessions. Reports operate on entity IDs rather than entity
// records, so they keep working for sessions whose entity has been
// deleted.
type ReportService struct {
	scope *Scope
}

// NewReportService creates a new ReportService
func NewReportService(scope *Scope) *ReportService {
	return &ReportService{scope: scope}
}

// SeriesResult is the data behind a report graph: the period axis and,
// per entity, the seconds per bucket plus the derived per-period and
// cumulative hour series aligned with the axis.
type SeriesResult struct {
	Axis            []string
	Granularity     report.Granularity
	Seconds         report.Series
	PerPeriodHours  map[uint64][]float64
	CumulativeHours map[uint64][]float64
}

// Total computes the total time the current user spent on one entity over
// [start, end].
func (s *ReportService) Total(entityID uint64, start, end time.Time) (*model.Report, error) {
	sessions, err := s.readSessions()
	if err != nil {
		return nil, err
	}

	rep := report.TotalTime(sessions, entityID, start, end)
	return &rep, nil
}

// TotalAll computes per-entity totals over [start, end] for every entity
// the current user owns, in entity list order.
func (s *ReportService) TotalAll(entities []model.Entity, start, end time.Time) ([]model.Report, error) {
	sessions, err := s.readSessions()
	if err != nil {
		return nil, err
	}

	reports := make([]model.Report, 0, len(entities))
	for _, e := range entities {
		reports = append(reports, report.TotalTime(sessions, e.ID, start, end))
	}
	return reports, nil
}

// Series buckets the entities' included sessions into periods and derives
// the axis and hour series for charting. The axis starts at the earliest
// included session (never before the selected start) and ends at the
// selected end clipped to now.
func (s *ReportService) Series(entityIDs []uint64, start, end time.Time, g report.Granularity) (*SeriesResult, error) {
	if !report.ValidGranularity(g) {
		return nil, fmt.Errorf("%w: granularity must be day, week, or month, got %q", ErrValidation, g)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrValidation)
	}

	sessions, err := s.readSessions()
	if err != nil {
		return nil, err
	}

	seconds := report.Bucket(sessions, entityIDs, start, end, g)
	earliest := report.EarliestStart(sessions, entityIDs, start, end)
	axis := report.Axis(start, end, earliest, time.Now(), g)

	result := &SeriesResult{
		Axis:            axis,
		Granularity:     g,
		Seconds:         seconds,
		PerPeriodHours:  make(map[uint64][]float64, len(entityIDs)),
		CumulativeHours: make(map[uint64][]float64, len(entityIDs)),
	}

	for _, id := range entityIDs {
		perPeriod := report.PerPeriodHours(seconds[id], axis)
		result.PerPeriodHours[id] = perPeriod
		result.CumulativeHours[id] = report.Cumulative(perPeriod)
	}

	return result, nil
}

func (s *ReportService) readSessions() ([]model.Session, error) {
	path, err := s.scope.sessionsPath()
	if err != nil {
		return nil, err
	}
	sessions, err := storage.ReadRecords[model.Session](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}
