package repository

import (
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/testutils"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T {
	return &v
}

func seedTask(t *testing.T, db *gorm.DB, title string, ownerID *uint64, completedAt *time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Priority:    models.PriorityMedium,
		Category:    "General",
		OwnerID:     ownerID,
		Completed:   completedAt != nil,
		CompletedAt: completedAt,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestTaskRepository_ListScopesByOwnerAndState(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewTaskRepository(db)

	alice, bob := ptr(uint64(1)), ptr(uint64(2))
	now := time.Now().UTC()
	first := seedTask(t, db, "first", alice, nil)
	second := seedTask(t, db, "second", alice, nil)
	seedTask(t, db, "done", alice, &now)
	seedTask(t, db, "bob's", bob, nil)
	seedTask(t, db, "shared", nil, nil)

	active, total, err := repo.List(TaskFilter{OwnerID: alice, Completed: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)

	shared, _, err := repo.List(TaskFilter{OwnerID: nil, Completed: ptr(false)})
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "shared", shared[0].Title)
}

func TestTaskRepository_UpdateActiveLeavesCompletionAlone(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewTaskRepository(db)

	alice := ptr(uint64(1))
	doneAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	active := seedTask(t, db, "active", alice, nil)
	done := seedTask(t, db, "done", alice, &doneAt)

	edit := *active
	edit.Title = "edited"
	edit.Category = "Work"
	edit.Completed = true
	edit.OwnerID = alice
	updated, err := repo.UpdateActive(&edit)
	require.NoError(t, err)
	assert.True(t, updated)

	stored, err := repo.FindByID(active.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Title)
	assert.Equal(t, "Work", stored.Category)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.CompletedAt)

	stale := *done
	stale.Title = "rewritten"
	updated, err = repo.UpdateActive(&stale)
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err = repo.FindByID(done.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", stored.Title)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, doneAt.Equal(*stored.CompletedAt))

	foreign := *active
	foreign.OwnerID = ptr(uint64(2))
	foreign.Title = "hijacked"
	updated, err = repo.UpdateActive(&foreign)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestTaskRepository_ListHistoryOrderAndPaging(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewTaskRepository(db)

	owner := ptr(uint64(1))
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedTask(t, db, "oldest", owner, ptr(base.Add(-2*time.Hour)))
	seedTask(t, db, "newest", owner, ptr(base))
	seedTask(t, db, "middle", owner, ptr(base.Add(-1*time.Hour)))

	history, total, err := repo.List(TaskFilter{OwnerID: owner, Completed: ptr(true), SortByCompletion: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"newest", "middle", "oldest"},
		[]string{history[0].Title, history[1].Title, history[2].Title})

	page, total, err := repo.List(TaskFilter{OwnerID: owner, Completed: ptr(true), SortByCompletion: true, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "oldest", page[0].Title)
}

func TestTaskRepository_CompleteOwnedSkipsForeignAndDone(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewTaskRepository(db)

	alice, bob := ptr(uint64(1)), ptr(uint64(2))
	earlier := time.Now().UTC().Add(-time.Hour)
	mine := seedTask(t, db, "mine", alice, nil)
	done := seedTask(t, db, "already", alice, &earlier)
	theirs := seedTask(t, db, "theirs", bob, nil)

	at := time.Now().UTC()
	changed, err := repo.CompleteOwned(alice, []uint64{mine.ID, done.ID, theirs.ID, 9999}, at)
	require.NoError(t, err)
	assert.Equal(t, []uint64{mine.ID}, changed)

	reloaded, err := repo.FindByID(mine.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Completed)
	require.NotNil(t, reloaded.CompletedAt)

	untouched, err := repo.FindByID(theirs.ID)
	require.NoError(t, err)
	assert.False(t, untouched.Completed)

	stillDone, err := repo.FindByID(done.ID)
	require.NoError(t, err)
	require.NotNil(t, stillDone.CompletedAt)
	assert.WithinDuration(t, earlier, *stillDone.CompletedAt, time.Second)
}

func TestTaskRepository_DeleteOwned(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewTaskRepository(db)

	alice, bob := ptr(uint64(1)), ptr(uint64(2))
	mine := seedTask(t, db, "mine", alice, nil)
	theirs := seedTask(t, db, "theirs", bob, nil)

	removed, err := repo.DeleteOwned(alice, []uint64{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{mine.ID}, removed)

	_, err = repo.FindByID(mine.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByID(theirs.ID)
	assert.NoError(t, err)

	removed, err = repo.DeleteOwned(alice, nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestTaskRepository_CompletedSinceAndCategories(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewTaskRepository(db)

	owner := ptr(uint64(1))
	now := time.Now().UTC()
	seedTask(t, db, "recent", owner, ptr(now.Add(-time.Hour)))
	seedTask(t, db, "old", owner, ptr(now.Add(-10*24*time.Hour)))
	require.NoError(t, db.Create(&models.Task{Title: "w", Category: "Work", OwnerID: owner}).Error)
	require.NoError(t, db.Create(&models.Task{Title: "w2", Category: "Work", OwnerID: owner}).Error)
	require.NoError(t, db.Create(&models.Task{Title: "h", Category: "Home", OwnerID: ptr(uint64(2))}).Error)

	stamps, err := repo.CompletedSince(owner, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stamps, 1)

	categories, err := repo.DistinctCategories(owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Work"}, categories)
}

func TestTaskRepository_DeleteCompleted_SQL(t *testing.T) {
	db, mock := testutils.SetupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE tasks.owner_id = \$1 AND tasks.completed = \$2`).
		WithArgs(5, true).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	affected, err := repo.DeleteCompleted(ptr(uint64(5)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_DeleteCompleted_RollsBack(t *testing.T) {
	db, mock := testutils.SetupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE tasks.owner_id IS NULL AND tasks.completed = \$1`).
		WithArgs(true).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.DeleteCompleted(nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
