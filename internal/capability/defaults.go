package capability

// Role enumerates account roles.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
	RoleDisplay  Role = "display"
)

// DefaultPermissions returns the fixed token set for a role. The result is
// deterministic per role; an administrative role change overwrites any
// previously customized set with this default.
//
// Super admins bypass token checks entirely, so their set only matters for
// display; they get the full catalog.
func DefaultPermissions(role Role, isSuperAdmin bool) TokenSet {
	if isSuperAdmin {
		return NewTokenSet(AllTokens())
	}
	switch role {
	case RoleAdmin:
		return NewTokenSet([]string{
			PermPeopleViewAll,
			PermPeopleEditAll,
			PermDimensionsEditAll,
			PermGrowthViewAll,
			PermGrowthEditAll,
			PermCertificatesUpload,
			PermCertificatesDelete,
			PermCertificatesManageAll,
			PermSensitiveView,
			PermAccountsManage,
		})
	case RoleDisplay:
		// Display accounts are read-only kiosks and never receive
		// sensitive disclosure tokens.
		return NewTokenSet([]string{
			PermPeopleViewAll,
			PermGrowthViewAll,
		})
	default:
		return NewTokenSet([]string{
			PermPeopleViewSelf,
			PermPeopleEditSelf,
			PermDimensionsEditSelf,
			PermGrowthViewSelf,
			PermGrowthEditSelf,
			PermCertificatesUpload,
		})
	}
}
