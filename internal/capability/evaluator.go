package capability

import "errors"

// ErrForbidden indicates a failed capability check. Callers surface it
// uniformly; it never distinguishes unknown tokens from missing grants.
var ErrForbidden = errors.New("capability: forbidden")

// Actor is the authenticated caller shape resolved once per request.
type Actor struct {
	ID                int64
	Role              Role
	Permissions       TokenSet
	IsSuperAdmin      bool
	SensitiveUnmasked bool
	LinkedPersonID    int64 // zero when the account is not linked to a person
}

// HasCapability reports whether the actor holds the token. Super admins
// satisfy every check unconditionally.
func HasCapability(actor Actor, token string) bool {
	if actor.IsSuperAdmin {
		return true
	}
	return actor.Permissions.Has(token)
}

// HasAnyCapability reports whether the actor holds at least one token.
func HasAnyCapability(actor Actor, tokens ...string) bool {
	if actor.IsSuperAdmin {
		return true
	}
	for _, token := range tokens {
		if actor.Permissions.Has(token) {
			return true
		}
	}
	return false
}

// Rule pairs the all-scope token with its self-scope counterpart for one
// resource type. Self applies only when the actor's linked person matches
// the target.
type Rule struct {
	All  string
	Self string
}

// Resource rules.
var (
	RuleViewPerson     = Rule{All: PermPeopleViewAll, Self: PermPeopleViewSelf}
	RuleEditPerson     = Rule{All: PermPeopleEditAll, Self: PermPeopleEditSelf}
	RuleEditDimensions = Rule{All: PermDimensionsEditAll, Self: PermDimensionsEditSelf}
	RuleViewGrowth     = Rule{All: PermGrowthViewAll, Self: PermGrowthViewSelf}
	RuleEditGrowth     = Rule{All: PermGrowthEditAll, Self: PermGrowthEditSelf}
)

// Evaluate applies the all-or-self pattern against a target person.
func Evaluate(actor Actor, rule Rule, personID int64) bool {
	if HasCapability(actor, rule.All) {
		return true
	}
	if rule.Self == "" {
		return false
	}
	return HasCapability(actor, rule.Self) && actor.LinkedPersonID != 0 && actor.LinkedPersonID == personID
}

// CanViewPerson reports view access to a person record.
func CanViewPerson(actor Actor, personID int64) bool {
	return Evaluate(actor, RuleViewPerson, personID)
}

// CanEditPerson reports edit access to a person record.
func CanEditPerson(actor Actor, personID int64) bool {
	return Evaluate(actor, RuleEditPerson, personID)
}

// CanEditDimensions reports edit access to a person's monthly profile.
func CanEditDimensions(actor Actor, personID int64) bool {
	return Evaluate(actor, RuleEditDimensions, personID)
}

// CanViewGrowth reports view access to a person's growth records.
func CanViewGrowth(actor Actor, personID int64) bool {
	return Evaluate(actor, RuleViewGrowth, personID)
}

// CanEditGrowth reports edit access to a person's growth records.
func CanEditGrowth(actor Actor, personID int64) bool {
	return Evaluate(actor, RuleEditGrowth, personID)
}

// CanManageCertificates requires an upload or delete grant plus either the
// manage-all token or identity match with the target person.
func CanManageCertificates(actor Actor, personID int64) bool {
	if actor.IsSuperAdmin {
		return true
	}
	if !HasAnyCapability(actor, PermCertificatesUpload, PermCertificatesDelete) {
		return false
	}
	if HasCapability(actor, PermCertificatesManageAll) {
		return true
	}
	return actor.LinkedPersonID != 0 && actor.LinkedPersonID == personID
}

// CanViewSensitive gates unmasked disclosure of sensitive fields. A person
// always sees their own data; other viewers need the sensitive.view token
// and must have opted into unmasked viewing.
func CanViewSensitive(actor Actor, personID int64) bool {
	if actor.IsSuperAdmin {
		return true
	}
	if actor.LinkedPersonID != 0 && actor.LinkedPersonID == personID {
		return true
	}
	return HasCapability(actor, PermSensitiveView) && actor.SensitiveUnmasked
}
