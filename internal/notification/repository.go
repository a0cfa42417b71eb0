package notification

import (
	"context"
	"time"

	"taskhive/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint64, unreadOnly bool, page, pageSize int) ([]domain.Notification, Meta, error)
	UnreadCount(ctx context.Context, recipientID uint64) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID uint64) error
	MarkAllRead(ctx context.Context, recipientID uint64) error
	Delete(ctx context.Context, recipientID, notificationID uint64) error

	CreateSubscription(ctx context.Context, sub *domain.PushSubscription) error
	ListSubscriptions(ctx context.Context, userID uint64) ([]domain.PushSubscription, error)
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
	DeleteSubscriptionByID(ctx context.Context, userID, subID uint64) error
}

type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, n *domain.Notification) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *RepositoryImpl) ListByRecipient(ctx context.Context, recipientID uint64, unreadOnly bool, page, pageSize int) ([]domain.Notification, Meta, error) {
	var notifications []domain.Notification
	var totalRecords int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = false")
	}

	if err := query.Count(&totalRecords).Error; err != nil {
		return notifications, Meta{}, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&notifications).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return notifications, Meta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *RepositoryImpl) UnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}

func (r *RepositoryImpl) MarkRead(ctx context.Context, recipientID, notificationID uint64) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepositoryImpl) MarkAllRead(ctx context.Context, recipientID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Update("is_read", true).Error
}

func (r *RepositoryImpl) Delete(ctx context.Context, recipientID, notificationID uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&domain.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepositoryImpl) CreateSubscription(ctx context.Context, sub *domain.PushSubscription) error {
	sub.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *RepositoryImpl) ListSubscriptions(ctx context.Context, userID uint64) ([]domain.PushSubscription, error) {
	var subs []domain.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (r *RepositoryImpl) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&domain.PushSubscription{}).Error
}

func (r *RepositoryImpl) DeleteSubscriptionByID(ctx context.Context, userID, subID uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", subID, userID).
		Delete(&domain.PushSubscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
