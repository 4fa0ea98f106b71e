package person

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentvault/talentvault/internal/capability"
)

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		want  string
	}{
		{"empty stays empty", "", ""},
		{"standard number", "13812345678", "138****78"},
		{"short number fully masked", "12345", "****"},
		{"exactly six runes", "123456", "123****56"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MaskPhone(tc.phone))
		})
	}
}

func TestMaskPhoneIsDeterministicAndIdempotent(t *testing.T) {
	masked := MaskPhone("13812345678")
	require.Equal(t, masked, MaskPhone("13812345678"))
	require.NotEqual(t, "13812345678", masked)
	require.Equal(t, masked, MaskPhone(masked))
}

func TestProjectMasksForUnprivilegedViewer(t *testing.T) {
	p := Person{ID: 9, Name: "Chen Wei", BirthDate: "1990-04-01", Phone: "13812345678"}
	viewer := capability.Actor{ID: 1, Permissions: capability.NewTokenSet([]string{capability.PermPeopleViewAll})}

	got := Project(p, viewer)
	require.Equal(t, MaskedBirthDate, got.BirthDate)
	require.Equal(t, "138****78", got.Phone)
	require.Equal(t, p.Name, got.Name)
}

func TestProjectTokenWithoutPreferenceStaysMasked(t *testing.T) {
	p := Person{ID: 9, BirthDate: "1990-04-01", Phone: "13812345678"}
	viewer := capability.Actor{ID: 1, Permissions: capability.NewTokenSet([]string{capability.PermSensitiveView})}

	got := Project(p, viewer)
	require.Equal(t, MaskedBirthDate, got.BirthDate)

	viewer.SensitiveUnmasked = true
	require.Equal(t, p, Project(p, viewer))
}

func TestProjectSelfSeesRawValues(t *testing.T) {
	p := Person{ID: 9, BirthDate: "1990-04-01", Phone: "13812345678"}
	viewer := capability.Actor{ID: 3, LinkedPersonID: 9}
	require.Equal(t, p, Project(p, viewer))
}

func TestProjectLeavesEmptyBirthDateEmpty(t *testing.T) {
	p := Person{ID: 9, Phone: "13812345678"}
	got := Project(p, capability.Actor{ID: 1})
	require.Equal(t, "", got.BirthDate)
}
