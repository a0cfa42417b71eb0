package task

import (
	"context"
	"time"

	"taskhive/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, userID uint64, task *domain.Task) error
	FindByID(ctx context.Context, id uint64) (*domain.Task, error)
	FindDeletedByID(ctx context.Context, id uint64) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uint64) error
	Restore(ctx context.Context, id uint64) error
	ListByOwner(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Task, Meta, error)
	ListSharedWith(ctx context.Context, userID uint64, page, pageSize int) ([]SharedTaskRow, Meta, error)
	// Describe satisfies the entity source the collaboration core consumes.
	Describe(ctx context.Context, ref domain.EntityRef) (uint64, string, error)
}

type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func metaFor(total int64, page, pageSize int) Meta {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Meta{
		Total:       total,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, userID uint64, task *domain.Task) error {
	task.UserID = userID
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *RepositoryImpl) FindDeletedByID(ctx context.Context, id uint64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error
}

func (r *RepositoryImpl) Restore(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Model(&domain.Task{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

func (r *RepositoryImpl) ListByOwner(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Task, Meta, error) {
	var tasks []domain.Task
	var totalRecords int64

	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("user_id = ?", userID).
		Count(&totalRecords).Error; err != nil {
		return tasks, Meta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&tasks).Error

	return tasks, metaFor(totalRecords, page, pageSize), err
}

// SharedTaskRow is a task joined with the caller's collaboration role.
type SharedTaskRow struct {
	domain.Task
	Role string `json:"role"`
}

func (r *RepositoryImpl) ListSharedWith(ctx context.Context, userID uint64, page, pageSize int) ([]SharedTaskRow, Meta, error) {
	var rows []SharedTaskRow
	var totalRecords int64

	base := r.db.WithContext(ctx).
		Table("tasks").
		Joins(`JOIN collaborations ON collaborations.entity_type = ?
			AND collaborations.entity_id = tasks.id
			AND collaborations.collaborator_id = ?
			AND collaborations.status = ?`,
			domain.EntityTask, userID, domain.CollabActive).
		Where("tasks.deleted_at IS NULL")

	if err := base.Count(&totalRecords).Error; err != nil {
		return rows, Meta{}, err
	}

	offset := (page - 1) * pageSize
	err := base.
		Select("tasks.*, collaborations.role AS role").
		Order("tasks.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Scan(&rows).Error

	return rows, metaFor(totalRecords, page, pageSize), err
}

// Describe implements the entity source consumed by access resolution.
// Vital tasks mirror tasks one-to-one and are not wired in this service,
// so only the task kind resolves.
func (r *RepositoryImpl) Describe(ctx context.Context, ref domain.EntityRef) (uint64, string, error) {
	if ref.Type != domain.EntityTask {
		return 0, "", gorm.ErrRecordNotFound
	}

	var task domain.Task
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "title").
		First(&task, ref.ID).Error
	if err != nil {
		return 0, "", err
	}
	return task.UserID, task.Title, nil
}
