package repository

import (
	"time"

	"github.com/yukikurage/task-tracker/internal/models"
)

// TaskRepository defines the interface for task data access.
//
// Methods taking an ownerID apply database.OwnedBy: a nil owner means the
// unowned tasks of a single-tenant deployment, not "every task".
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID regardless of owner
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// UpdateActive writes title, description, priority, category and due
	// date of an active task. Completion state and owner are never written.
	UpdateActive(task *models.Task) (bool, error)

	// Delete permanently removes a task
	Delete(id uint64) error

	// CompleteOwned marks the owner's active tasks among ids as completed
	// in one transaction and returns the IDs that changed
	CompleteOwned(ownerID *uint64, ids []uint64, at time.Time) ([]uint64, error)

	// DeleteOwned removes the owner's tasks among ids in one transaction
	// and returns the IDs that were removed
	DeleteOwned(ownerID *uint64, ids []uint64) ([]uint64, error)

	// DeleteCompleted removes every completed task of the owner
	DeleteCompleted(ownerID *uint64) (int64, error)

	// CompletedSince returns the completion timestamps of the owner's tasks
	// completed at or after since
	CompletedSince(ownerID *uint64, since time.Time) ([]time.Time, error)

	// DistinctCategories lists the owner's non-empty categories in order
	DistinctCategories(ownerID *uint64) ([]string, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID          *uint64
	Completed        *bool
	SortByCompletion bool
	Page             int
	PageSize         int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateUnique checks username and email uniqueness and creates the
	// user within a single transaction
	CreateUnique(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByLogin finds a user by username or email
	FindByLogin(identifier string) (*models.User, error)

	// Exists reports whether a user with column = value exists.
	// Only "username" and "email" are accepted.
	Exists(column, value string) (bool, error)

	// ExistsExcept is Exists ignoring the user with the given ID
	ExistsExcept(column, value string, userID uint64) (bool, error)

	// Update saves a user
	Update(user *models.User) error
}
