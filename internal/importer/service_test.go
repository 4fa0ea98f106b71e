package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/person"
)

type memoryRepo struct {
	nextID  int64
	people  map[int64]person.Person
	records map[int64]map[dimension.MonthKey][]dimension.Record
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:  1,
		people:  make(map[int64]person.Person),
		records: make(map[int64]map[dimension.MonthKey][]dimension.Record),
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) FindPersonIDByName(ctx context.Context, name string) (int64, error) {
	for id, p := range m.people {
		if p.Name == name {
			return id, nil
		}
	}
	return 0, person.ErrNotFound
}

func (m *memoryRepo) CreatePerson(ctx context.Context, p person.Person) (int64, error) {
	id := m.nextID
	m.nextID++
	p.ID = id
	m.people[id] = p
	return id, nil
}

func (m *memoryRepo) UpdatePersonFields(ctx context.Context, id int64, department, title, focus string) error {
	p, ok := m.people[id]
	if !ok {
		return person.ErrNotFound
	}
	p.Department, p.Title, p.Focus = department, title, focus
	m.people[id] = p
	return nil
}

func (m *memoryRepo) ReplaceMonth(ctx context.Context, personID int64, month dimension.MonthKey, records []dimension.Record) error {
	if m.records[personID] == nil {
		m.records[personID] = make(map[dimension.MonthKey][]dimension.Record)
	}
	m.records[personID][month] = records
	return nil
}

func importActor() capability.Actor {
	return capability.Actor{ID: 1, Permissions: capability.NewTokenSet([]string{capability.PermPeopleEditAll})}
}

const sampleCSV = "name,department,title,focus,month,work\n" +
	"张三,研发部,工程师,后端,2025-03,项目交付\n"

func TestRunDryPhaseDefersUnmatchedNames(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	result, err := svc.Run(context.Background(), importActor(), Input{Reader: strings.NewReader(sampleCSV)})
	require.NoError(t, err)

	require.True(t, result.NeedsConfirm)
	require.Equal(t, []string{"张三"}, result.PendingNames)
	require.Equal(t, 0, result.Created)
	require.Equal(t, 1, result.Skipped)
	require.Empty(t, repo.people)
	require.NotEmpty(t, result.BatchID)
}

func TestRunConfirmPhaseCreatesPendingNames(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	result, err := svc.Run(context.Background(), importActor(), Input{
		Reader:      strings.NewReader(sampleCSV),
		AllowCreate: true,
	})
	require.NoError(t, err)

	require.False(t, result.NeedsConfirm)
	require.Empty(t, result.PendingNames)
	require.Equal(t, 1, result.Created)
	require.Len(t, repo.people, 1)

	id, err := repo.FindPersonIDByName(context.Background(), "张三")
	require.NoError(t, err)
	require.Equal(t, "研发部", repo.people[id].Department)

	stored := repo.records[id][dimension.MonthKey("2025-03")]
	require.Len(t, stored, 6)
	for _, rec := range stored {
		if rec.Category == dimension.CategoryWork {
			require.Equal(t, "项目交付", rec.Detail)
		} else {
			require.Equal(t, dimension.SentinelDetail, rec.Detail)
		}
	}
}

func TestRunDryThenConfirmRoundTrip(t *testing.T) {
	input := "name,department,title,focus,month,work\n" +
		"张三,研发部,工程师,后端,2025-03,项目交付\n" +
		"李四,市场部,经理,渠道,2025-03,季度复盘\n"
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	dry, err := svc.Run(context.Background(), importActor(), Input{Reader: strings.NewReader(input)})
	require.NoError(t, err)
	require.True(t, dry.NeedsConfirm)
	require.ElementsMatch(t, []string{"张三", "李四"}, dry.PendingNames)
	require.Empty(t, repo.people)

	confirm, err := svc.Run(context.Background(), importActor(), Input{
		Reader:      strings.NewReader(input),
		AllowCreate: true,
	})
	require.NoError(t, err)
	require.False(t, confirm.NeedsConfirm)
	require.Equal(t, 2, confirm.Created)
	require.Len(t, repo.people, 2)
	for id := range repo.people {
		require.Len(t, repo.records[id][dimension.MonthKey("2025-03")], 6)
	}
}

func TestRunMatchedRowsUpdateInBothPhases(t *testing.T) {
	repo := newMemoryRepo()
	repo.people[1] = person.Person{ID: 1, Name: "张三", Department: "旧部门"}
	repo.nextID = 2
	svc := NewService(repo, nil)

	result, err := svc.Run(context.Background(), importActor(), Input{Reader: strings.NewReader(sampleCSV)})
	require.NoError(t, err)

	// Matched rows are written even in the deferral phase.
	require.False(t, result.NeedsConfirm)
	require.Equal(t, 1, result.Updated)
	require.Equal(t, "研发部", repo.people[1].Department)
	require.Len(t, repo.records[1][dimension.MonthKey("2025-03")], 6)
}

func TestRunDuplicatePendingNameReportedOnce(t *testing.T) {
	input := "name,department,title,focus\n" +
		"张三,研发部,工程师,后端\n" +
		"张三,研发部,工程师,后端\n"
	svc := NewService(newMemoryRepo(), nil)

	result, err := svc.Run(context.Background(), importActor(), Input{Reader: strings.NewReader(input)})
	require.NoError(t, err)
	require.Equal(t, []string{"张三"}, result.PendingNames)
	require.Equal(t, 2, result.Skipped)
}

func TestRunMalformedMonthFallsBackToCurrent(t *testing.T) {
	input := "name,department,title,focus,month,work\n" +
		"张三,研发部,工程师,后端,not-a-month,项目交付\n"
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.Run(context.Background(), importActor(), Input{
		Reader:      strings.NewReader(input),
		AllowCreate: true,
		Now:         now,
	})
	require.NoError(t, err)
	require.Contains(t, repo.records[1], dimension.MonthKey("2025-06"))
}

func TestRunCollectsEveryRowViolation(t *testing.T) {
	input := "name,department,title,focus\n" +
		"张三,,工程师,\n" +
		",研发部,,后端\n"
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Run(context.Background(), importActor(), Input{Reader: strings.NewReader(input)})
	require.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Rows, 4)

	fields := make(map[string]int)
	for _, rowErr := range vErr.Rows {
		fields[rowErr.Field]++
	}
	require.Equal(t, map[string]int{"name": 1, "department": 1, "title": 1, "focus": 1}, fields)
}

func TestRunForbiddenWithoutEditAll(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	viewer := capability.Actor{ID: 2, Permissions: capability.NewTokenSet([]string{capability.PermPeopleViewAll})}

	_, err := svc.Run(context.Background(), viewer, Input{Reader: strings.NewReader(sampleCSV)})
	require.ErrorIs(t, err, capability.ErrForbidden)
}
