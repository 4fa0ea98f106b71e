package importer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/person"
	"github.com/talentvault/talentvault/internal/shared"
)

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs spreadsheet reconciliation imports.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs importer service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Input describes one import invocation. AllowCreate selects the phase:
// false defers unmatched names, true creates them. The flag travels with
// every call; no pending state is kept server-side between phases.
type Input struct {
	Reader      io.Reader
	AllowCreate bool
	Now         time.Time
}

// Run parses, validates and reconciles the uploaded file against existing
// persons, writing dimension data through whole-month replacement.
func (s *Service) Run(ctx context.Context, actor capability.Actor, input Input) (Result, error) {
	if !capability.HasCapability(actor, capability.PermPeopleEditAll) {
		return Result{}, capability.ErrForbidden
	}
	rows, err := ParseCSV(input.Reader)
	if err != nil {
		return Result{}, err
	}
	if errs := validateRows(rows); len(errs) > 0 {
		return Result{}, &ValidationError{Rows: errs}
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	currentMonth := dimension.MonthOf(now)

	result := Result{BatchID: uuid.NewString()}
	pendingSeen := make(map[string]struct{})

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, row := range rows {
			month := currentMonth
			if parsed, err := dimension.ParseMonth(row.Month); err == nil {
				month = parsed
			}
			personID, err := tx.FindPersonIDByName(ctx, row.Name)
			switch {
			case err == nil:
				if err := tx.UpdatePersonFields(ctx, personID, row.Department, row.Title, row.Focus); err != nil {
					return err
				}
				if err := s.replaceMonth(ctx, tx, personID, month, row); err != nil {
					return err
				}
				result.Updated++
			case errors.Is(err, person.ErrNotFound):
				if !input.AllowCreate {
					if _, seen := pendingSeen[row.Name]; !seen {
						pendingSeen[row.Name] = struct{}{}
						result.PendingNames = append(result.PendingNames, row.Name)
					}
					result.Skipped++
					continue
				}
				id, err := tx.CreatePerson(ctx, person.Person{
					Name:       row.Name,
					Department: row.Department,
					Title:      row.Title,
					Focus:      row.Focus,
				})
				if err != nil {
					return err
				}
				if err := s.replaceMonth(ctx, tx, id, month, row); err != nil {
					return err
				}
				result.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	result.NeedsConfirm = len(result.PendingNames) > 0
	s.recordAudit(ctx, actor.ID, result)
	return result, nil
}

func (s *Service) replaceMonth(ctx context.Context, tx TxRepository, personID int64, month dimension.MonthKey, row Row) error {
	submissions := make([]dimension.Submission, 0, len(row.Details))
	for category, detail := range row.Details {
		submissions = append(submissions, dimension.Submission{Category: category, Detail: detail})
	}
	records, err := dimension.NormalizeMonth(personID, month, submissions)
	if err != nil {
		return err
	}
	return tx.ReplaceMonth(ctx, personID, month, records)
}

func validateRows(rows []Row) []RowError {
	var errs []RowError
	for _, row := range rows {
		if row.Name == "" {
			errs = append(errs, RowError{Line: row.Line, Field: "name", Message: "required"})
		}
		if row.Department == "" {
			errs = append(errs, RowError{Line: row.Line, Field: "department", Message: "required"})
		}
		if row.Title == "" {
			errs = append(errs, RowError{Line: row.Line, Field: "title", Message: "required"})
		}
		if row.Focus == "" {
			errs = append(errs, RowError{Line: row.Line, Field: "focus", Message: "required"})
		}
	}
	return errs
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, result Result) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "IMPORT_RUN",
		Entity:   "import",
		EntityID: result.BatchID,
		Meta: map[string]any{
			"created": result.Created,
			"updated": result.Updated,
			"skipped": result.Skipped,
			"pending": len(result.PendingNames),
		},
	})
}
