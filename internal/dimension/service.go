package dimension

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListRecords(ctx context.Context, personID int64, months []MonthKey) ([]Record, error)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	DeleteMonth(ctx context.Context, personID int64, month MonthKey) error
	InsertRecord(ctx context.Context, rec Record) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service holds the monthly snapshot rules: whole-month replacement and
// fully materialized range reads.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs dimension service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Submission is one submitted (category, detail) pair.
type Submission struct {
	Category Category
	Detail   string
}

// NormalizeMonth validates submissions and produces exactly six records in
// catalog order. Unknown categories fail the whole set; the error lists
// every offending category. Blank or missing details become the sentinel.
// When a category is submitted more than once the last value wins.
func NormalizeMonth(personID int64, month MonthKey, submitted []Submission) ([]Record, error) {
	var unknown []string
	details := make(map[Category]string, len(submitted))
	for _, sub := range submitted {
		if !IsKnownCategory(sub.Category) {
			unknown = append(unknown, string(sub.Category))
			continue
		}
		details[sub.Category] = strings.TrimSpace(sub.Detail)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown categories %s", ErrValidation, strings.Join(unknown, ", "))
	}
	records := make([]Record, 0, len(categorySet))
	for _, category := range Categories() {
		detail := details[category]
		if detail == "" {
			detail = SentinelDetail
		}
		records = append(records, Record{PersonID: personID, Category: category, Month: month, Detail: detail})
	}
	return records, nil
}

// ReplaceMonth atomically replaces the person's month with exactly six
// normalized rows. Repeating the call with identical input yields identical
// stored state.
func (s *Service) ReplaceMonth(ctx context.Context, actor capability.Actor, personID int64, month MonthKey, submitted []Submission) error {
	if !capability.CanEditDimensions(actor, personID) {
		return capability.ErrForbidden
	}
	if _, err := ParseMonth(string(month)); err != nil {
		return err
	}
	records, err := NormalizeMonth(personID, month, submitted)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteMonth(ctx, personID, month); err != nil {
			return err
		}
		for _, rec := range records {
			if err := tx.InsertRecord(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "DIMENSION_REPLACE", personID, map[string]any{"month": string(month)})
	return nil
}

// ReadRange returns six records per requested month in catalog order,
// materializing missing rows as the sentinel and applying the disclosure
// filter. A person with no history yields the all-sentinel projection.
func (s *Service) ReadRange(ctx context.Context, actor capability.Actor, personID int64, months []MonthKey) ([]Record, error) {
	if !capability.CanViewPerson(actor, personID) {
		return nil, capability.ErrForbidden
	}
	stored, err := s.repo.ListRecords(ctx, personID, months)
	if err != nil {
		return nil, err
	}
	byKey := make(map[MonthKey]map[Category]string, len(months))
	for _, rec := range stored {
		if byKey[rec.Month] == nil {
			byKey[rec.Month] = make(map[Category]string)
		}
		byKey[rec.Month][rec.Category] = rec.Detail
	}
	records := make([]Record, 0, len(months)*len(Categories()))
	for _, month := range months {
		for _, category := range Categories() {
			detail := byKey[month][category]
			if detail == "" {
				detail = SentinelDetail
			}
			records = append(records, Record{PersonID: personID, Category: category, Month: month, Detail: detail})
		}
	}
	return ProjectRecords(records, actor, personID), nil
}

// ProjectRecords masks the sensitive category for unprivileged viewers.
// All other categories pass through unchanged.
func ProjectRecords(records []Record, actor capability.Actor, personID int64) []Record {
	if capability.CanViewSensitive(actor, personID) {
		return records
	}
	projected := make([]Record, len(records))
	for i, rec := range records {
		if rec.Category == SensitiveCategory {
			rec.Detail = MaskedDetail
		}
		projected[i] = rec
	}
	return projected
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, personID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "dimension", EntityID: fmt.Sprintf("%d", personID), Meta: meta})
}
