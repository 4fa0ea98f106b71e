package person

import (
	"github.com/talentvault/talentvault/internal/capability"
)

// MaskedBirthDate replaces redacted birth dates. The transform is lossy;
// the original value is not derivable from it.
const MaskedBirthDate = "****-**-**"

// MaskPhone redacts the middle of a phone number, keeping a three rune
// prefix and a two rune suffix. Values too short to keep both are fully
// redacted. The output is stable for a fixed input, and masking an
// already-masked value yields the same value.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	runes := []rune(phone)
	if len(runes) <= 5 {
		return "****"
	}
	return string(runes[:3]) + "****" + string(runes[len(runes)-2:])
}

// Project returns a viewer-specific copy of the person. Privileged viewers
// get the record unchanged; everyone else gets sensitive fields masked.
// Applied at every read boundary, exactly once.
func Project(p Person, actor capability.Actor) Person {
	if capability.CanViewSensitive(actor, p.ID) {
		return p
	}
	masked := p
	masked.Phone = MaskPhone(p.Phone)
	if p.BirthDate != "" {
		masked.BirthDate = MaskedBirthDate
	}
	return masked
}

// ProjectAll applies Project to a list.
func ProjectAll(people []Person, actor capability.Actor) []Person {
	projected := make([]Person, len(people))
	for i, p := range people {
		projected[i] = Project(p, actor)
	}
	return projected
}
