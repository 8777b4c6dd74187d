package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cosmonotes/internal/models"
	"cosmonotes/internal/repository"
	"cosmonotes/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	ctx        context.Context
	connString string
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.Migrate(s.connString))

	s.storage, err = postgres.New(s.ctx, s.connString, postgres.PoolConfig{})
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "DELETE FROM tasks")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) newTask(title string) *models.Task {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Task{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresTestSuite) TestCreateAndGetByID() {
	task := s.newTask("Buy milk")
	task.Content = "2 liters"
	task.Tags = []string{"a", "b"}
	due := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	task.DueDate = &due
	task.UserID = "alice"

	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	got, err := s.storage.GetByID(s.ctx, task.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), task.ID, got.ID)
	assert.Equal(s.T(), "Buy milk", got.Title)
	assert.Equal(s.T(), "2 liters", got.Content)
	assert.Equal(s.T(), []string{"a", "b"}, got.Tags, "tag order must round-trip through the JSON column")
	require.NotNil(s.T(), got.DueDate)
	assert.True(s.T(), got.DueDate.Equal(due))
	assert.Equal(s.T(), "alice", got.UserID)
	assert.False(s.T(), got.IsPublic)
	assert.Empty(s.T(), got.ShareID)
}

func (s *PostgresTestSuite) TestCreate_MinimalTask() {
	task := s.newTask("bare")
	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	got, err := s.storage.GetByID(s.ctx, task.ID)
	require.NoError(s.T(), err)

	assert.Empty(s.T(), got.Content)
	assert.Nil(s.T(), got.DueDate)
	assert.Nil(s.T(), got.Tags)
	assert.Empty(s.T(), got.UserID)
}

func (s *PostgresTestSuite) TestGetByID_NotFound() {
	_, err := s.storage.GetByID(s.ctx, uuid.New().String())
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestList_FiltersAndOrder() {
	base := time.Now().UTC().Truncate(time.Microsecond)

	oldest := s.newTask("oldest")
	oldest.CreatedAt = base.Add(-2 * time.Hour)
	oldest.Tags = []string{"work", "urgent"}

	middle := s.newTask("middle")
	middle.CreatedAt = base.Add(-time.Hour)
	middle.UserID = "alice"
	middle.IsOverdue = true

	newest := s.newTask("newest")
	newest.CreatedAt = base
	newest.IsPublic = true
	newest.ShareID = "abcdef123456"

	for _, task := range []*models.Task{oldest, middle, newest} {
		require.NoError(s.T(), s.storage.Create(s.ctx, task))
	}

	all, err := s.storage.List(s.ctx, repository.Filter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "newest", all[0].Title)
	assert.Equal(s.T(), "oldest", all[2].Title)

	tagged, err := s.storage.List(s.ctx, repository.Filter{Tag: "work"})
	require.NoError(s.T(), err)
	require.Len(s.T(), tagged, 1)
	assert.Equal(s.T(), "oldest", tagged[0].Title)

	overdue := true
	flagged, err := s.storage.List(s.ctx, repository.Filter{Overdue: &overdue})
	require.NoError(s.T(), err)
	require.Len(s.T(), flagged, 1)
	assert.Equal(s.T(), "middle", flagged[0].Title)

	public := true
	shared, err := s.storage.List(s.ctx, repository.Filter{Public: &public})
	require.NoError(s.T(), err)
	require.Len(s.T(), shared, 1)
	assert.Equal(s.T(), "newest", shared[0].Title)

	owned, err := s.storage.List(s.ctx, repository.Filter{UserID: "alice"})
	require.NoError(s.T(), err)
	require.Len(s.T(), owned, 1)
	assert.Equal(s.T(), "middle", owned[0].Title)
}

func (s *PostgresTestSuite) TestUpdate_PartialFields() {
	task := s.newTask("Buy milk")
	due := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Microsecond)
	task.DueDate = &due
	task.IsOverdue = true
	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	content := "2 liters"
	updated, err := s.storage.Update(s.ctx, task.ID, repository.TaskPatch{Content: &content})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "Buy milk", updated.Title)
	assert.Equal(s.T(), "2 liters", updated.Content)
	assert.True(s.T(), updated.IsOverdue, "content-only update must not recompute overdue")
	assert.True(s.T(), updated.UpdatedAt.After(task.UpdatedAt))
}

func (s *PostgresTestSuite) TestUpdate_DueDateRecomputesOverdue() {
	task := s.newTask("report")
	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	past := time.Now().UTC().Add(-time.Hour)
	updated, err := s.storage.Update(s.ctx, task.ID, repository.TaskPatch{
		DueDate:    &past,
		DueDateSet: true,
	})
	require.NoError(s.T(), err)
	assert.True(s.T(), updated.IsOverdue)

	updated, err = s.storage.Update(s.ctx, task.ID, repository.TaskPatch{DueDateSet: true})
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated.DueDate)
	assert.False(s.T(), updated.IsOverdue)
}

func (s *PostgresTestSuite) TestUpdate_EmptyPatchReturnsCurrentRow() {
	task := s.newTask("stable")
	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	updated, err := s.storage.Update(s.ctx, task.ID, repository.TaskPatch{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "stable", updated.Title)
	assert.True(s.T(), updated.UpdatedAt.Equal(task.UpdatedAt), "empty patch must not refresh updatedAt")
}

func (s *PostgresTestSuite) TestUpdate_NotFound() {
	title := "x"
	_, err := s.storage.Update(s.ctx, uuid.New().String(), repository.TaskPatch{Title: &title})
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestDelete_Twice() {
	task := s.newTask("short lived")
	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	deleted, err := s.storage.Delete(s.ctx, task.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	deleted, err = s.storage.Delete(s.ctx, task.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *PostgresTestSuite) TestSharingTransitions() {
	task := s.newTask("to share")
	require.NoError(s.T(), s.storage.Create(s.ctx, task))

	ok, err := s.storage.SetPublic(s.ctx, task.ID, "abcdef123456")
	require.NoError(s.T(), err)
	require.True(s.T(), ok)

	got, err := s.storage.GetByShareID(s.ctx, "abcdef123456")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), task.ID, got.ID)
	assert.True(s.T(), got.IsPublic)

	ok, err = s.storage.SetPrivate(s.ctx, task.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)

	got, err = s.storage.GetByID(s.ctx, task.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), got.IsPublic)
	assert.Empty(s.T(), got.ShareID)

	_, err = s.storage.GetByShareID(s.ctx, "abcdef123456")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestSetPublic_UnknownID() {
	ok, err := s.storage.SetPublic(s.ctx, uuid.New().String(), "abcdef123456")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *PostgresTestSuite) TestRecomputeOverdue() {
	now := time.Now().UTC()

	pastDue := s.newTask("late")
	past := now.Add(-time.Hour)
	pastDue.DueDate = &past

	futureDue := s.newTask("on time")
	future := now.Add(time.Hour)
	futureDue.DueDate = &future
	futureDue.IsOverdue = true // stale flag, the sweep must correct it

	noDue := s.newTask("someday")

	shared := s.newTask("shared and late")
	sharedDue := now.Add(-2 * time.Hour)
	shared.DueDate = &sharedDue
	shared.IsPublic = true
	shared.ShareID = "feedbeef0012"

	for _, task := range []*models.Task{pastDue, futureDue, noDue, shared} {
		require.NoError(s.T(), s.storage.Create(s.ctx, task))
	}

	written, err := s.storage.RecomputeOverdue(s.ctx, now)
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 3, written, "count is every row with a due date, not just flips")

	got, err := s.storage.GetByID(s.ctx, pastDue.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.IsOverdue)

	got, err = s.storage.GetByID(s.ctx, futureDue.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), got.IsOverdue)

	got, err = s.storage.GetByID(s.ctx, noDue.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), got.IsOverdue)

	got, err = s.storage.GetByID(s.ctx, shared.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.IsPublic, "sweep must not touch sharing fields")
	assert.Equal(s.T(), "feedbeef0012", got.ShareID)
}

func (s *PostgresTestSuite) TestGetOverdue_SortedAndFiltered() {
	now := time.Now().UTC()

	later := s.newTask("later")
	laterDue := now.Add(-time.Hour)
	later.DueDate = &laterDue
	later.IsOverdue = true

	earlier := s.newTask("earlier")
	earlierDue := now.Add(-2 * time.Hour)
	earlier.DueDate = &earlierDue
	earlier.IsOverdue = true
	earlier.UserID = "alice"

	for _, task := range []*models.Task{later, earlier} {
		require.NoError(s.T(), s.storage.Create(s.ctx, task))
	}

	overdue, err := s.storage.GetOverdue(s.ctx, "")
	require.NoError(s.T(), err)
	require.Len(s.T(), overdue, 2)
	assert.Equal(s.T(), "earlier", overdue[0].Title)

	owned, err := s.storage.GetOverdue(s.ctx, "alice")
	require.NoError(s.T(), err)
	require.Len(s.T(), owned, 1)
	assert.Equal(s.T(), "earlier", owned[0].Title)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}
