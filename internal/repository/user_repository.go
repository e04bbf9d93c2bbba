package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrUsernameExists is returned by CreateUnique when the username is taken.
	ErrUsernameExists = errors.New("user repository: username already exists")
	// ErrEmailExists is returned by CreateUnique when the email is taken.
	ErrEmailExists = errors.New("user repository: email already exists")
	// ErrCreateUser is returned when inserting the user row fails.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrUnknownColumn is returned by Exists for columns outside the allow list.
	ErrUnknownColumn = errors.New("user repository: unknown uniqueness column")
)

var uniqueColumns = map[string]struct{}{
	"username": {},
	"email":    {},
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateUnique checks uniqueness and creates the user atomically.
func (r *GormUserRepository) CreateUnique(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, "username", user.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameExists
		}

		taken, err = exists(tx, "email", user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}
		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin finds a user by username or email
func (r *GormUserRepository) FindByLogin(identifier string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether any user has column = value
func (r *GormUserRepository) Exists(column, value string) (bool, error) {
	return exists(r.db, column, value, 0)
}

// ExistsExcept reports whether a user other than userID has column = value
func (r *GormUserRepository) ExistsExcept(column, value string, userID uint64) (bool, error) {
	return exists(r.db, column, value, userID)
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// exists counts soft-deleted rows too, matching the unique indexes.
func exists(db *gorm.DB, column, value string, exceptID uint64) (bool, error) {
	if _, ok := uniqueColumns[column]; !ok {
		return false, ErrUnknownColumn
	}

	query := db.Unscoped().Model(&models.User{}).Where(column+" = ?", value)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
