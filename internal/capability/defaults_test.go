package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPermissionsStandardIsSelfScoped(t *testing.T) {
	set := DefaultPermissions(RoleStandard, false)

	require.True(t, set.Has(PermPeopleViewSelf))
	require.True(t, set.Has(PermDimensionsEditSelf))
	require.True(t, set.Has(PermCertificatesUpload))

	for _, token := range set.List() {
		require.NotContains(t, []string{
			PermPeopleViewAll,
			PermPeopleEditAll,
			PermDimensionsEditAll,
			PermGrowthViewAll,
			PermGrowthEditAll,
			PermCertificatesManageAll,
			PermSensitiveView,
			PermAccountsManage,
		}, token)
	}
}

func TestDefaultPermissionsAdmin(t *testing.T) {
	set := DefaultPermissions(RoleAdmin, false)

	require.True(t, set.Has(PermPeopleEditAll))
	require.True(t, set.Has(PermSensitiveView))
	require.True(t, set.Has(PermAccountsManage))
	require.False(t, set.Has(PermPeopleViewSelf))
}

func TestDefaultPermissionsDisplayIsReadOnly(t *testing.T) {
	set := DefaultPermissions(RoleDisplay, false)

	require.ElementsMatch(t, []string{PermPeopleViewAll, PermGrowthViewAll}, set.List())
}

func TestDefaultPermissionsSuperAdminGetsFullCatalog(t *testing.T) {
	set := DefaultPermissions(RoleStandard, true)
	require.ElementsMatch(t, AllTokens(), set.List())
}

func TestCatalogTokensAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for _, def := range Catalog() {
		require.NotEmpty(t, def.Token)
		require.NotEmpty(t, def.Label)
		_, dup := seen[def.Token]
		require.False(t, dup, "duplicate token %s", def.Token)
		seen[def.Token] = struct{}{}
	}
}
