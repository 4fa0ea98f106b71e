package dimension

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonthsFromQueryExplicitRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/people/1/dimensions?from=2024-11&to=2025-02", nil)
	months, err := monthsFromQuery(r)
	require.NoError(t, err)
	require.Equal(t, []MonthKey{"2024-11", "2024-12", "2025-01", "2025-02"}, months)
}

func TestMonthsFromQueryRangeCapped(t *testing.T) {
	r := httptest.NewRequest("GET", "/people/1/dimensions?from=1000-01&to=9999-12", nil)
	_, err := monthsFromQuery(r)
	require.ErrorIs(t, err, ErrValidation)

	// Exactly the cap is still allowed.
	r = httptest.NewRequest("GET", "/people/1/dimensions?from=2023-01&to=2025-12", nil)
	months, err := monthsFromQuery(r)
	require.NoError(t, err)
	require.Len(t, months, 36)
}

func TestMonthsFromQueryCountDefaultsAndCap(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	defer func() { timeNow = restore }()

	r := httptest.NewRequest("GET", "/people/1/dimensions", nil)
	months, err := monthsFromQuery(r)
	require.NoError(t, err)
	require.Len(t, months, 6)
	require.Equal(t, MonthKey("2025-06"), months[len(months)-1])

	r = httptest.NewRequest("GET", "/people/1/dimensions?months=500", nil)
	months, err = monthsFromQuery(r)
	require.NoError(t, err)
	require.Len(t, months, 6)
}
