package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentvault/talentvault/internal/capability"
)

type memoryRepo struct {
	nextID   int64
	accounts map[int64]Account
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, accounts: make(map[int64]Account)}
}

func (m *memoryRepo) GetAccount(ctx context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (m *memoryRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	var all []Account
	for _, a := range m.accounts {
		all = append(all, a)
	}
	return all, nil
}

func (m *memoryRepo) CreateAccount(ctx context.Context, a Account) (int64, error) {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return 0, ErrDuplicate
		}
	}
	id := m.nextID
	m.nextID++
	a.ID = id
	m.accounts[id] = a
	return id, nil
}

func (m *memoryRepo) UpdateRoleAndPermissions(ctx context.Context, id int64, role string, permissions []string) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.Role = capability.Role(role)
	a.Permissions = permissions
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) UpdatePermissions(ctx context.Context, id int64, permissions []string) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.Permissions = permissions
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) UpdateSensitiveUnmasked(ctx context.Context, id int64, unmasked bool) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.SensitiveUnmasked = unmasked
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) UpdateLinkedPerson(ctx context.Context, id int64, personID int64) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.LinkedPersonID = personID
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) DeleteAccount(ctx context.Context, id int64) error {
	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func managerActor() capability.Actor {
	return capability.Actor{ID: 1, Permissions: capability.NewTokenSet([]string{capability.PermAccountsManage})}
}

func TestProvisionAppliesRoleDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.Provision(context.Background(), managerActor(), ProvisionInput{
		Email:    "User@Example.Com ",
		Password: "correct horse",
		Role:     capability.RoleStandard,
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", created.Email)
	require.ElementsMatch(t, capability.DefaultPermissions(capability.RoleStandard, false).List(), created.Permissions)
	require.True(t, created.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")))
}

func TestProvisionValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Provision(context.Background(), managerActor(), ProvisionInput{Email: "", Password: "longenough", Role: capability.RoleStandard})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Provision(context.Background(), managerActor(), ProvisionInput{Email: "a@b.c", Password: "short", Role: capability.RoleStandard})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Provision(context.Background(), managerActor(), ProvisionInput{Email: "a@b.c", Password: "longenough", Role: "owner"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestChangeRoleOverwritesCustomGrants(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.Provision(context.Background(), managerActor(), ProvisionInput{
		Email:    "user@example.com",
		Password: "correct horse",
		Role:     capability.RoleStandard,
	})
	require.NoError(t, err)

	require.NoError(t, svc.GrantPermission(context.Background(), managerActor(), created.ID, capability.PermSensitiveView))
	require.Contains(t, repo.accounts[created.ID].Permissions, capability.PermSensitiveView)

	// A role change resets the set to the new role's defaults. The
	// custom sensitive.view grant does not survive.
	require.NoError(t, svc.ChangeRole(context.Background(), managerActor(), created.ID, capability.RoleDisplay))
	got := repo.accounts[created.ID]
	require.Equal(t, capability.RoleDisplay, got.Role)
	require.ElementsMatch(t, capability.DefaultPermissions(capability.RoleDisplay, false).List(), got.Permissions)
	require.NotContains(t, got.Permissions, capability.PermSensitiveView)
}

func TestGrantRejectsUnknownToken(t *testing.T) {
	repo := newMemoryRepo()
	repo.accounts[5] = Account{ID: 5, Email: "x@y.z", IsActive: true}
	svc := NewService(repo, nil)

	err := svc.GrantPermission(context.Background(), managerActor(), 5, "made.up.token")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRevokeRemovesToken(t *testing.T) {
	repo := newMemoryRepo()
	repo.accounts[5] = Account{ID: 5, Permissions: []string{capability.PermPeopleViewAll, capability.PermGrowthViewAll}, IsActive: true}
	svc := NewService(repo, nil)

	require.NoError(t, svc.RevokePermission(context.Background(), managerActor(), 5, capability.PermGrowthViewAll))
	require.ElementsMatch(t, []string{capability.PermPeopleViewAll}, repo.accounts[5].Permissions)
}

func TestSetSensitiveUnmaskedSelfOrManager(t *testing.T) {
	repo := newMemoryRepo()
	repo.accounts[5] = Account{ID: 5, IsActive: true}
	svc := NewService(repo, nil)

	self := capability.Actor{ID: 5}
	require.NoError(t, svc.SetSensitiveUnmasked(context.Background(), self, 5, true))
	require.True(t, repo.accounts[5].SensitiveUnmasked)

	stranger := capability.Actor{ID: 6}
	err := svc.SetSensitiveUnmasked(context.Background(), stranger, 5, false)
	require.ErrorIs(t, err, capability.ErrForbidden)
}

func TestResolveActorNormalizesStoredPermissions(t *testing.T) {
	repo := newMemoryRepo()
	repo.accounts[5] = Account{
		ID:                5,
		Role:              capability.RoleStandard,
		Permissions:       []string{capability.PermPeopleViewSelf, "stale.token", capability.PermSensitiveView},
		SensitiveUnmasked: true,
		LinkedPersonID:    7,
		IsActive:          true,
	}
	svc := NewService(repo, nil)

	actor, err := svc.ResolveActor(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(7), actor.LinkedPersonID)
	require.True(t, actor.SensitiveUnmasked)
	require.True(t, actor.Permissions.Has(capability.PermPeopleViewSelf))
	require.False(t, actor.Permissions.Has("stale.token"))
}

func TestResolveActorInactiveAccount(t *testing.T) {
	repo := newMemoryRepo()
	repo.accounts[5] = Account{ID: 5, IsActive: false}
	svc := NewService(repo, nil)

	_, err := svc.ResolveActor(context.Background(), 5)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLinkPersonZeroUnlinks(t *testing.T) {
	repo := newMemoryRepo()
	repo.accounts[5] = Account{ID: 5, LinkedPersonID: 7, IsActive: true}
	svc := NewService(repo, nil)

	require.NoError(t, svc.LinkPerson(context.Background(), managerActor(), 5, 0))
	require.Zero(t, repo.accounts[5].LinkedPersonID)
}
