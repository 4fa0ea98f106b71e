package account

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/shared"
)

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages accounts and their permission sets.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs account service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// ProvisionInput describes account creation payload.
type ProvisionInput struct {
	Email          string
	Password       string
	Role           capability.Role
	LinkedPersonID int64
}

// Provision creates an account with the role's default permission set.
func (s *Service) Provision(ctx context.Context, actor capability.Actor, input ProvisionInput) (Account, error) {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return Account{}, capability.ErrForbidden
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" {
		return Account{}, fmt.Errorf("%w: email required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return Account{}, fmt.Errorf("%w: password too short", ErrValidation)
	}
	switch input.Role {
	case capability.RoleStandard, capability.RoleAdmin, capability.RoleDisplay:
	default:
		return Account{}, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	a := Account{
		Email:          input.Email,
		PasswordHash:   string(hash),
		Role:           input.Role,
		Permissions:    capability.DefaultPermissions(input.Role, false).List(),
		LinkedPersonID: input.LinkedPersonID,
		IsActive:       true,
	}
	id, err := s.repo.CreateAccount(ctx, a)
	if err != nil {
		return Account{}, err
	}
	a.ID = id
	s.recordAudit(ctx, actor.ID, "ACCOUNT_CREATE", id, map[string]any{"email": a.Email, "role": string(a.Role)})
	return a, nil
}

// Get returns one account. Managers may read any; others only their own.
func (s *Service) Get(ctx context.Context, actor capability.Actor, accountID int64) (Account, error) {
	if actor.ID != accountID && !capability.HasCapability(actor, capability.PermAccountsManage) {
		return Account{}, capability.ErrForbidden
	}
	return s.repo.GetAccount(ctx, accountID)
}

// List returns all accounts for the management surface.
func (s *Service) List(ctx context.Context, actor capability.Actor) ([]Account, error) {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return nil, capability.ErrForbidden
	}
	return s.repo.ListAccounts(ctx)
}

// ChangeRole updates the role and overwrites the permission set with the
// new role's defaults. Custom grants applied earlier are discarded; role
// defines permissions, customization is ephemeral.
func (s *Service) ChangeRole(ctx context.Context, actor capability.Actor, accountID int64, role capability.Role) error {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return capability.ErrForbidden
	}
	switch role {
	case capability.RoleStandard, capability.RoleAdmin, capability.RoleDisplay:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	target, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	defaults := capability.DefaultPermissions(role, target.IsSuperAdmin).List()
	if err := s.repo.UpdateRoleAndPermissions(ctx, accountID, string(role), defaults); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "ACCOUNT_ROLE_CHANGE", accountID, map[string]any{"role": string(role)})
	return nil
}

// GrantPermission adds one catalog token to the account's set. Values
// outside the catalog are rejected.
func (s *Service) GrantPermission(ctx context.Context, actor capability.Actor, accountID int64, token string) error {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return capability.ErrForbidden
	}
	token = strings.TrimSpace(token)
	if !capability.IsKnown(token) {
		return fmt.Errorf("%w: unknown capability token %q", ErrValidation, token)
	}
	target, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	set := capability.NewTokenSet(target.Permissions)
	if set.Has(token) {
		return nil
	}
	set[token] = struct{}{}
	if err := s.repo.UpdatePermissions(ctx, accountID, set.List()); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "ACCOUNT_GRANT", accountID, map[string]any{"token": token})
	return nil
}

// RevokePermission removes one token from the account's set.
func (s *Service) RevokePermission(ctx context.Context, actor capability.Actor, accountID int64, token string) error {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return capability.ErrForbidden
	}
	target, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	set := capability.NewTokenSet(target.Permissions)
	if !set.Has(token) {
		return nil
	}
	delete(set, token)
	if err := s.repo.UpdatePermissions(ctx, accountID, set.List()); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "ACCOUNT_REVOKE", accountID, map[string]any{"token": token})
	return nil
}

// SetSensitiveUnmasked toggles the account's unmasked-viewing preference.
// Accounts may toggle their own preference; managers may toggle any.
func (s *Service) SetSensitiveUnmasked(ctx context.Context, actor capability.Actor, accountID int64, unmasked bool) error {
	if actor.ID != accountID && !capability.HasCapability(actor, capability.PermAccountsManage) {
		return capability.ErrForbidden
	}
	if err := s.repo.UpdateSensitiveUnmasked(ctx, accountID, unmasked); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "ACCOUNT_SENSITIVE_PREF", accountID, map[string]any{"unmasked": unmasked})
	return nil
}

// LinkPerson establishes "this account is person P" for self-scoped rules.
// Passing zero unlinks.
func (s *Service) LinkPerson(ctx context.Context, actor capability.Actor, accountID, personID int64) error {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return capability.ErrForbidden
	}
	if err := s.repo.UpdateLinkedPerson(ctx, accountID, personID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "ACCOUNT_LINK", accountID, map[string]any{"person_id": personID})
	return nil
}

// Delete removes the account. Audit rows referencing it persist.
func (s *Service) Delete(ctx context.Context, actor capability.Actor, accountID int64) error {
	if !capability.HasCapability(actor, capability.PermAccountsManage) {
		return capability.ErrForbidden
	}
	if err := s.repo.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.ID, "ACCOUNT_DELETE", accountID, nil)
	return nil
}

// ResolveActor loads an account and normalizes its stored permission blob
// into a validated token set. This is the single boundary where unknown
// tokens are dropped.
func (s *Service) ResolveActor(ctx context.Context, accountID int64) (capability.Actor, error) {
	a, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return capability.Actor{}, err
	}
	if !a.IsActive {
		return capability.Actor{}, ErrNotFound
	}
	return capability.Actor{
		ID:                a.ID,
		Role:              a.Role,
		Permissions:       capability.NewTokenSet(a.Permissions),
		IsSuperAdmin:      a.IsSuperAdmin,
		SensitiveUnmasked: a.SensitiveUnmasked,
		LinkedPersonID:    a.LinkedPersonID,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "account", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
