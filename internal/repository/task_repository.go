package repository

import (
	"time"

	"github.com/yukikurage/task-tracker/internal/database"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Scopes(database.OwnedBy(filter.OwnerID))

	if filter.Completed != nil {
		query = query.Where("tasks.completed = ?", *filter.Completed)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByCompletion {
		listQuery = listQuery.Order("tasks.completed_at DESC").Order("tasks.id DESC")
	} else {
		listQuery = listQuery.Order("tasks.created_at ASC").Order("tasks.id ASC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateActive writes the editable columns of a task that is still active
// and owned by task.OwnerID. It reports false when no row matched.
func (r *GormTaskRepository) UpdateActive(task *models.Task) (bool, error) {
	result := r.db.Model(&models.Task{}).
		Scopes(database.OwnedBy(task.OwnerID)).
		Where("tasks.id = ? AND tasks.completed = ?", task.ID, false).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"priority":    task.Priority,
			"category":    task.Category,
			"due_date":    task.DueDate,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete permanently deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CompleteOwned completes the owner's active tasks among ids
func (r *GormTaskRepository) CompleteOwned(ownerID *uint64, ids []uint64, at time.Time) ([]uint64, error) {
	var changed []uint64
	if len(ids) == 0 {
		return changed, nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Scopes(database.OwnedBy(ownerID)).
			Where("tasks.id IN ? AND tasks.completed = ?", ids, false).
			Pluck("tasks.id", &changed).Error; err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}

		return tx.Model(&models.Task{}).
			Where("id IN ?", changed).
			Updates(map[string]interface{}{
				"completed":    true,
				"completed_at": at,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return changed, nil
}

// DeleteOwned removes the owner's tasks among ids
func (r *GormTaskRepository) DeleteOwned(ownerID *uint64, ids []uint64) ([]uint64, error) {
	var removed []uint64
	if len(ids) == 0 {
		return removed, nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Scopes(database.OwnedBy(ownerID)).
			Where("tasks.id IN ?", ids).
			Pluck("tasks.id", &removed).Error; err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}

		return tx.Where("id IN ?", removed).Delete(&models.Task{}).Error
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// DeleteCompleted removes all completed tasks of the owner
func (r *GormTaskRepository) DeleteCompleted(ownerID *uint64) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(database.OwnedBy(ownerID)).
			Where("tasks.completed = ?", true).
			Delete(&models.Task{})
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

// CompletedSince returns the owner's completion timestamps at or after since
func (r *GormTaskRepository) CompletedSince(ownerID *uint64, since time.Time) ([]time.Time, error) {
	var tasks []models.Task
	if err := r.db.Select("id", "completed_at").
		Scopes(database.OwnedBy(ownerID)).
		Where("tasks.completed = ? AND tasks.completed_at >= ?", true, since).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	stamps := make([]time.Time, 0, len(tasks))
	for _, t := range tasks {
		if t.CompletedAt != nil {
			stamps = append(stamps, *t.CompletedAt)
		}
	}
	return stamps, nil
}

// DistinctCategories lists the owner's distinct non-empty categories
func (r *GormTaskRepository) DistinctCategories(ownerID *uint64) ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Where("tasks.category <> ?", "").
		Distinct().
		Order("tasks.category").
		Pluck("tasks.category", &categories).Error
	return categories, err
}
