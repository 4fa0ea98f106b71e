package person

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/shared"
)

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates personnel record flows. Every operation gates on
// the actor's capabilities and applies the disclosure filter before data
// leaves the service.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs person service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Input describes person create/update payload.
type Input struct {
	Name       string
	Title      string
	Department string
	Focus      string
	Bio        string
	BirthDate  string
	Phone      string
}

// Create inserts a new person. Requires the all-scope edit capability.
func (s *Service) Create(ctx context.Context, actor capability.Actor, input Input) (Person, error) {
	if !capability.HasCapability(actor, capability.PermPeopleEditAll) {
		return Person{}, capability.ErrForbidden
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Person{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	p := Person{
		Name:       input.Name,
		Title:      strings.TrimSpace(input.Title),
		Department: strings.TrimSpace(input.Department),
		Focus:      strings.TrimSpace(input.Focus),
		Bio:        strings.TrimSpace(input.Bio),
		BirthDate:  strings.TrimSpace(input.BirthDate),
		Phone:      strings.TrimSpace(input.Phone),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreatePerson(ctx, p)
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return Person{}, err
	}
	s.recordAudit(ctx, actor.ID, "PERSON_CREATE", p.ID, map[string]any{"name": p.Name})
	return Project(p, actor), nil
}

// Get returns one person with the disclosure filter applied.
func (s *Service) Get(ctx context.Context, actor capability.Actor, id int64) (Person, error) {
	if !capability.CanViewPerson(actor, id) {
		return Person{}, capability.ErrForbidden
	}
	p, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		return Person{}, err
	}
	return Project(p, actor), nil
}

// List returns a page of persons, each projected for the viewer.
func (s *Service) List(ctx context.Context, actor capability.Actor, limit, offset int) ([]Person, int, error) {
	if !capability.HasCapability(actor, capability.PermPeopleViewAll) {
		return nil, 0, capability.ErrForbidden
	}
	if limit <= 0 {
		limit = 20
	}
	people, total, err := s.repo.ListPersons(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return ProjectAll(people, actor), total, nil
}

// Update mutates a person record. Self-scoped editors may only touch their
// linked record.
func (s *Service) Update(ctx context.Context, actor capability.Actor, id int64, input Input) (Person, error) {
	if !capability.CanEditPerson(actor, id) {
		return Person{}, capability.ErrForbidden
	}
	existing, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		return Person{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Person{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	updated := existing
	updated.Name = input.Name
	updated.Title = strings.TrimSpace(input.Title)
	updated.Department = strings.TrimSpace(input.Department)
	updated.Focus = strings.TrimSpace(input.Focus)
	updated.Bio = strings.TrimSpace(input.Bio)
	updated.BirthDate = strings.TrimSpace(input.BirthDate)
	updated.Phone = strings.TrimSpace(input.Phone)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdatePerson(ctx, updated)
	})
	if err != nil {
		return Person{}, err
	}
	s.recordAudit(ctx, actor.ID, "PERSON_UPDATE", id, map[string]any{"name": updated.Name})
	return Project(updated, actor), nil
}

// Delete removes a person, cascades its dimension rows and detaches any
// linked accounts inside one transaction.
func (s *Service) Delete(ctx context.Context, actor capability.Actor, id int64) error {
	if !capability.HasCapability(actor, capability.PermPeopleEditAll) {
		return capability.ErrForbidden
	}
	existing, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteDimensionRows(ctx, id); err != nil {
			return err
		}
		if err := tx.DetachAccounts(ctx, id); err != nil {
			return err
		}
		return tx.DeletePerson(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "PERSON_DELETE", id, map[string]any{"name": existing.Name})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "person", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
