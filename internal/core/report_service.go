package core

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"audti-backend-go/internal/criteria"
	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
)

// AuditReport is the printable summary of one audit. Scores come from the
// criteria snapshot stored with the audit, not from the live checklist.
type AuditReport struct {
	Audit     *models.Audit    `json:"audit"`
	Summary   criteria.Summary `json:"summary"`
	Responses int              `json:"responses"`
}

// UnitCount is the number of audits of one organizational unit.
type UnitCount struct {
	Unit  string `json:"unit"`
	Count int    `json:"count"`
}

// Overview aggregates every audit visible to the session.
type Overview struct {
	Total     int         `json:"total"`
	Finalized int         `json:"finalized"`
	Drafts    int         `json:"drafts"`
	MeanScore float64     `json:"meanScore"` // mean of the audit means, audits without criteria excluded
	ByUnit    []UnitCount `json:"byUnit"`
}

type reportService struct {
	audits    db.AuditRepository
	responses db.ResponseRepository
	logger    *zap.Logger
}

// NewReportService creates a new ReportService instance.
func NewReportService(repos db.Repositories, logger *zap.Logger) ReportService {
	return &reportService{audits: repos.Audits, responses: repos.Responses, logger: logger}
}

func (s *reportService) AuditReport(ctx context.Context, session *models.Session, auditID string) (*AuditReport, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	scope := scopeOf(session)
	audit, err := s.audits.GetByID(ctx, scope, auditID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListByAudit(ctx, scope, auditID)
	if err != nil {
		return nil, err
	}
	return &AuditReport{
		Audit:     audit,
		Summary:   criteria.Summarize(audit.Criteria),
		Responses: len(responses),
	}, nil
}

func (s *reportService) Overview(ctx context.Context, session *models.Session) (*Overview, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	audits, err := s.audits.ListAll(ctx, scopeOf(session))
	if err != nil {
		return nil, err
	}

	o := &Overview{Total: len(audits), ByUnit: []UnitCount{}}
	units := map[string]int{}
	var sum float64
	var scored int
	for _, a := range audits {
		if a.Finalized {
			o.Finalized++
		}
		if a.Unit != "" {
			units[a.Unit]++
		}
		if len(a.Criteria) > 0 {
			sum += criteria.Summarize(a.Criteria).Mean
			scored++
		}
	}
	o.Drafts = o.Total - o.Finalized
	if scored > 0 {
		o.MeanScore = math.Round(sum/float64(scored)*100) / 100
	}
	for unit, n := range units {
		o.ByUnit = append(o.ByUnit, UnitCount{Unit: unit, Count: n})
	}
	sort.Slice(o.ByUnit, func(i, j int) bool { return o.ByUnit[i].Unit < o.ByUnit[j].Unit })
	return o, nil
}
