// Package capability implements the permission catalog and the access
// evaluation rules used by every gated operation in TalentVault.
package capability

import (
	"sort"
	"strings"
)

// Capability tokens. Tokens are opaque identifiers drawn from this catalog;
// values outside the catalog are dropped when an actor's set is normalized.
const (
	PermPeopleViewAll  = "people.view.all"
	PermPeopleViewSelf = "people.view.self"
	PermPeopleEditAll  = "people.edit.all"
	PermPeopleEditSelf = "people.edit.self"

	PermDimensionsEditAll  = "dimensions.edit.all"
	PermDimensionsEditSelf = "dimensions.edit.self"

	PermGrowthViewAll  = "growth.view.all"
	PermGrowthViewSelf = "growth.view.self"
	PermGrowthEditAll  = "growth.edit.all"
	PermGrowthEditSelf = "growth.edit.self"

	PermCertificatesUpload    = "certificates.upload"
	PermCertificatesDelete    = "certificates.delete"
	PermCertificatesManageAll = "certificates.manage.all"

	PermSensitiveView = "sensitive.view"

	PermAccountsManage = "accounts.manage"
)

// Definition pairs a token with its human readable label.
type Definition struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// Catalog returns every known token with its label, in display order.
func Catalog() []Definition {
	return []Definition{
		{PermPeopleViewAll, "View all personnel records"},
		{PermPeopleViewSelf, "View own personnel record"},
		{PermPeopleEditAll, "Edit all personnel records"},
		{PermPeopleEditSelf, "Edit own personnel record"},
		{PermDimensionsEditAll, "Edit all monthly profiles"},
		{PermDimensionsEditSelf, "Edit own monthly profile"},
		{PermGrowthViewAll, "View all growth records"},
		{PermGrowthViewSelf, "View own growth records"},
		{PermGrowthEditAll, "Edit all growth records"},
		{PermGrowthEditSelf, "Edit own growth records"},
		{PermCertificatesUpload, "Upload certificates"},
		{PermCertificatesDelete, "Delete certificates"},
		{PermCertificatesManageAll, "Manage all certificates"},
		{PermSensitiveView, "View sensitive fields unmasked"},
		{PermAccountsManage, "Manage accounts and permissions"},
	}
}

// AllTokens returns every catalog token.
func AllTokens() []string {
	defs := Catalog()
	tokens := make([]string, 0, len(defs))
	for _, def := range defs {
		tokens = append(tokens, def.Token)
	}
	return tokens
}

var knownTokens = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, def := range Catalog() {
		set[def.Token] = struct{}{}
	}
	return set
}()

// IsKnown reports whether the token exists in the catalog.
func IsKnown(token string) bool {
	_, ok := knownTokens[strings.TrimSpace(token)]
	return ok
}

// TokenSet is a validated set of capability tokens.
type TokenSet map[string]struct{}

// NewTokenSet builds a TokenSet from raw values, dropping anything outside
// the catalog. This is the single boundary where stored permission blobs
// are validated; downstream checks trust the set.
func NewTokenSet(raw []string) TokenSet {
	set := make(TokenSet, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if _, ok := knownTokens[token]; ok {
			set[token] = struct{}{}
		}
	}
	return set
}

// Has reports membership.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// List returns the tokens in deterministic order.
func (s TokenSet) List() []string {
	tokens := make([]string, 0, len(s))
	for token := range s {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
