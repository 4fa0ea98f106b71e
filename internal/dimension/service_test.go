package dimension

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentvault/talentvault/internal/capability"
)

type memoryRepo struct {
	records map[int64]map[MonthKey]map[Category]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]map[MonthKey]map[Category]string)}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) ListRecords(ctx context.Context, personID int64, months []MonthKey) ([]Record, error) {
	var out []Record
	byMonth := m.records[personID]
	for _, month := range months {
		for category, detail := range byMonth[month] {
			out = append(out, Record{PersonID: personID, Category: category, Month: month, Detail: detail})
		}
	}
	return out, nil
}

func (m *memoryRepo) DeleteMonth(ctx context.Context, personID int64, month MonthKey) error {
	if byMonth, ok := m.records[personID]; ok {
		delete(byMonth, month)
	}
	return nil
}

func (m *memoryRepo) InsertRecord(ctx context.Context, rec Record) error {
	if m.records[rec.PersonID] == nil {
		m.records[rec.PersonID] = make(map[MonthKey]map[Category]string)
	}
	if m.records[rec.PersonID][rec.Month] == nil {
		m.records[rec.PersonID][rec.Month] = make(map[Category]string)
	}
	m.records[rec.PersonID][rec.Month][rec.Category] = rec.Detail
	return nil
}

func editorActor() capability.Actor {
	return capability.Actor{ID: 1, Permissions: capability.NewTokenSet([]string{
		capability.PermDimensionsEditAll,
		capability.PermPeopleViewAll,
	})}
}

func TestNormalizeMonthSingleSubmission(t *testing.T) {
	records, err := NormalizeMonth(5, "2025-03", []Submission{
		{Category: CategoryIdeology, Detail: "学习了新的理论材料"},
	})
	require.NoError(t, err)
	require.Len(t, records, 6)

	require.Equal(t, CategoryIdeology, records[0].Category)
	require.Equal(t, "学习了新的理论材料", records[0].Detail)
	for _, rec := range records[1:] {
		require.Equal(t, SentinelDetail, rec.Detail)
	}
}

func TestNormalizeMonthUnknownCategoriesListedTogether(t *testing.T) {
	_, err := NormalizeMonth(5, "2025-03", []Submission{
		{Category: "spirit", Detail: "x"},
		{Category: CategoryWork, Detail: "ok"},
		{Category: "vibes", Detail: "y"},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "spirit")
	require.Contains(t, err.Error(), "vibes")
}

func TestNormalizeMonthLastValueWins(t *testing.T) {
	records, err := NormalizeMonth(5, "2025-03", []Submission{
		{Category: CategoryWork, Detail: "first"},
		{Category: CategoryWork, Detail: "second"},
	})
	require.NoError(t, err)
	for _, rec := range records {
		if rec.Category == CategoryWork {
			require.Equal(t, "second", rec.Detail)
		}
	}
}

func TestNormalizeMonthBlankBecomesSentinel(t *testing.T) {
	records, err := NormalizeMonth(5, "2025-03", []Submission{
		{Category: CategoryHealth, Detail: "   "},
	})
	require.NoError(t, err)
	for _, rec := range records {
		require.Equal(t, SentinelDetail, rec.Detail)
	}
}

func TestReplaceMonthWritesExactlySixRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	err := svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-03", []Submission{
		{Category: CategoryStudy, Detail: "完成培训课程"},
	})
	require.NoError(t, err)
	require.Len(t, repo.records[5]["2025-03"], 6)
	require.Equal(t, "完成培训课程", repo.records[5]["2025-03"][CategoryStudy])
	require.Equal(t, SentinelDetail, repo.records[5]["2025-03"][CategoryFamily])
}

func TestReplaceMonthEmptySubmissionYieldsAllSentinels(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-03", nil))
	stored := repo.records[5]["2025-03"]
	require.Len(t, stored, 6)
	for _, detail := range stored {
		require.Equal(t, SentinelDetail, detail)
	}
}

func TestReplaceMonthIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	submitted := []Submission{{Category: CategoryWork, Detail: "项目交付"}}

	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-03", submitted))
	first := repo.records[5]["2025-03"]

	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-03", submitted))
	require.Equal(t, first, repo.records[5]["2025-03"])
}

func TestReplaceMonthDropsStaleCategories(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-03", []Submission{
		{Category: CategoryWork, Detail: "old work"},
		{Category: CategoryStudy, Detail: "old study"},
	}))
	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-03", []Submission{
		{Category: CategoryWork, Detail: "new work"},
	}))
	stored := repo.records[5]["2025-03"]
	require.Equal(t, "new work", stored[CategoryWork])
	require.Equal(t, SentinelDetail, stored[CategoryStudy])
}

func TestReplaceMonthRejectsMalformedMonth(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	err := svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-3", nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestReplaceMonthForbiddenForViewer(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	viewer := capability.Actor{ID: 2, Permissions: capability.NewTokenSet([]string{capability.PermPeopleViewAll})}
	err := svc.ReplaceMonth(context.Background(), viewer, 5, "2025-03", nil)
	require.ErrorIs(t, err, capability.ErrForbidden)
}

func TestReadRangeMaterializesMissingMonths(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-02", []Submission{
		{Category: CategoryWork, Detail: "二月工作"},
	}))

	months, err := MonthsBetween("2025-01", "2025-03")
	require.NoError(t, err)
	records, err := svc.ReadRange(context.Background(), editorActor(), 5, months)
	require.NoError(t, err)
	require.Len(t, records, 18)

	// January was never written: six sentinel rows.
	for _, rec := range records[:6] {
		require.Equal(t, MonthKey("2025-01"), rec.Month)
		require.Equal(t, SentinelDetail, rec.Detail)
	}
}

func TestReadRangeMasksSensitiveCategory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.ReplaceMonth(context.Background(), editorActor(), 5, "2025-02", []Submission{
		{Category: CategoryFamily, Detail: "家庭情况说明"},
	}))

	viewer := capability.Actor{ID: 2, Permissions: capability.NewTokenSet([]string{capability.PermPeopleViewAll})}
	records, err := svc.ReadRange(context.Background(), viewer, 5, []MonthKey{"2025-02"})
	require.NoError(t, err)
	for _, rec := range records {
		if rec.Category == SensitiveCategory {
			require.Equal(t, MaskedDetail, rec.Detail)
		}
	}

	// The linked person sees the raw value.
	self := capability.Actor{ID: 3, Permissions: capability.NewTokenSet([]string{capability.PermPeopleViewSelf}), LinkedPersonID: 5}
	records, err = svc.ReadRange(context.Background(), self, 5, []MonthKey{"2025-02"})
	require.NoError(t, err)
	for _, rec := range records {
		if rec.Category == SensitiveCategory {
			require.Equal(t, "家庭情况说明", rec.Detail)
		}
	}
}
