package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasCapabilitySuperAdminBypass(t *testing.T) {
	actor := Actor{ID: 1, IsSuperAdmin: true, Permissions: NewTokenSet(nil)}
	require.True(t, HasCapability(actor, PermAccountsManage))
	require.True(t, HasCapability(actor, PermPeopleEditAll))
}

func TestEvaluateAllScopeWinsOverSelf(t *testing.T) {
	actor := Actor{ID: 2, Permissions: NewTokenSet([]string{PermPeopleViewAll})}
	require.True(t, Evaluate(actor, RuleViewPerson, 999))
}

func TestEvaluateSelfScopeRequiresLinkedPerson(t *testing.T) {
	actor := Actor{ID: 3, Permissions: NewTokenSet([]string{PermPeopleViewSelf}), LinkedPersonID: 7}

	require.True(t, Evaluate(actor, RuleViewPerson, 7))
	require.False(t, Evaluate(actor, RuleViewPerson, 8))

	// Unlinked accounts never match a self-scoped rule.
	actor.LinkedPersonID = 0
	require.False(t, Evaluate(actor, RuleViewPerson, 0))
}

func TestEvaluateSelfScopedEditor(t *testing.T) {
	actor := Actor{ID: 4, Permissions: NewTokenSet([]string{PermDimensionsEditSelf}), LinkedPersonID: 7}

	require.True(t, CanEditDimensions(actor, 7))
	require.False(t, CanEditDimensions(actor, 12))
	require.False(t, CanEditPerson(actor, 7))
}

func TestCanViewSensitive(t *testing.T) {
	cases := []struct {
		name     string
		actor    Actor
		personID int64
		want     bool
	}{
		{
			name:     "super admin always sees raw values",
			actor:    Actor{ID: 1, IsSuperAdmin: true},
			personID: 42,
			want:     true,
		},
		{
			name:     "self always sees own raw values",
			actor:    Actor{ID: 2, LinkedPersonID: 42},
			personID: 42,
			want:     true,
		},
		{
			name:     "token alone is not enough without the preference",
			actor:    Actor{ID: 3, Permissions: NewTokenSet([]string{PermSensitiveView})},
			personID: 42,
			want:     false,
		},
		{
			name:     "preference alone is not enough without the token",
			actor:    Actor{ID: 4, SensitiveUnmasked: true},
			personID: 42,
			want:     false,
		},
		{
			name:     "token plus preference unmasks",
			actor:    Actor{ID: 5, Permissions: NewTokenSet([]string{PermSensitiveView}), SensitiveUnmasked: true},
			personID: 42,
			want:     true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanViewSensitive(tc.actor, tc.personID))
		})
	}
}

func TestCanManageCertificates(t *testing.T) {
	manager := Actor{ID: 1, Permissions: NewTokenSet([]string{PermCertificatesDelete, PermCertificatesManageAll})}
	require.True(t, CanManageCertificates(manager, 55))

	selfOnly := Actor{ID: 2, Permissions: NewTokenSet([]string{PermCertificatesUpload}), LinkedPersonID: 55}
	require.True(t, CanManageCertificates(selfOnly, 55))
	require.False(t, CanManageCertificates(selfOnly, 56))

	noTokens := Actor{ID: 3, LinkedPersonID: 55}
	require.False(t, CanManageCertificates(noTokens, 55))
}

func TestNewTokenSetDropsUnknownTokens(t *testing.T) {
	set := NewTokenSet([]string{PermPeopleViewAll, "bogus.token", " people.edit.all ", ""})
	require.True(t, set.Has(PermPeopleViewAll))
	require.True(t, set.Has(PermPeopleEditAll))
	require.False(t, set.Has("bogus.token"))
	require.Len(t, set, 2)
}
