package repository

import (
	"github.com/skmtks/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by their normalized email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update persists a modified user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// CountAdmins returns the number of admin users
func (r *GormUserRepository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// CountByIDs counts how many of the given user IDs exist
func (r *GormUserRepository) CountByIDs(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// RemoveUserFromAllTasks scrubs the user ID out of every task's assignee
// list inside one transaction, returning how many tasks were rewritten.
func (r *GormUserRepository) RemoveUserFromAllTasks(userID uint64) (int64, error) {
	var updated int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = unassignUserFromAllTasks(tx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// DeleteWithUnassign runs the cascade and deletes the user row atomically.
func (r *GormUserRepository) DeleteWithUnassign(userID uint64) (int64, error) {
	var updated int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = unassignUserFromAllTasks(tx, userID)
		if err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// unassignUserFromAllTasks rewrites every assignee list containing the user.
// The remaining members keep their relative order, and the column is always
// written back as a concrete list, never NULL.
func unassignUserFromAllTasks(tx *gorm.DB, userID uint64) (int64, error) {
	var tasks []models.Task
	query := tx.Model(&models.Task{}).Select("id", "assigned_to")
	if err := assignedToContains(tx, query, userID).Find(&tasks).Error; err != nil {
		return 0, err
	}

	var updated int64
	for _, t := range tasks {
		filtered := t.AssignedTo.Without(userID)
		err := tx.Model(&models.Task{}).
			Where("id = ?", t.ID).
			Update("assigned_to", filtered).Error
		if err != nil {
			return 0, err
		}
		updated++
	}

	return updated, nil
}

// CountTasksByStatus returns the user's assigned-task counts keyed by status
func (r *GormUserRepository) CountTasksByStatus(userID uint64) (map[models.TaskStatus]int64, error) {
	var counts []struct {
		Status models.TaskStatus
		Total  int64
	}
	query := r.db.Model(&models.Task{}).Select("status, COUNT(*) AS total")
	err := assignedToContains(r.db, query, userID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byStatus := make(map[models.TaskStatus]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Total
	}
	return byStatus, nil
}
