package collaboration

import (
	"context"
	"time"

	"taskhive/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, collab *domain.Collaboration) error
	Update(ctx context.Context, collab *domain.Collaboration) error
	FindByID(ctx context.Context, id uint64) (*domain.Collaboration, error)
	FindByToken(ctx context.Context, token string) (*domain.Collaboration, error)
	// FindActive returns the unique active record binding userID to the entity.
	FindActive(ctx context.Context, ref domain.EntityRef, userID uint64) (*domain.Collaboration, error)
	// FindLive returns the pending-or-active record for (entity, email), if any.
	FindLive(ctx context.Context, ref domain.EntityRef, email string) (*domain.Collaboration, error)
	ListByEntity(ctx context.Context, ref domain.EntityRef) ([]domain.Collaboration, error)
	ListForUser(ctx context.Context, userID uint64) ([]domain.Collaboration, error)
	// ListActiveMemberIDs returns the bound collaborator ids with an active
	// record on the entity. The owner is not included.
	ListActiveMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error)
	// CountLiveByOwner counts pending+active records across all of the
	// owner's entities, for the plan quota check.
	CountLiveByOwner(ctx context.Context, ownerID uint64) (int64, error)
	// ClaimForUser binds userID to every unclaimed record matching email.
	// Constrained on collaborator_id IS NULL, so repeated logins are no-ops.
	ClaimForUser(ctx context.Context, userID uint64, email string) (int64, error)

	CreateShareLink(ctx context.Context, link *domain.ShareLink) error
	FindShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, collab *domain.Collaboration) error {
	now := time.Now().UTC()
	collab.CreatedAt = now
	collab.UpdatedAt = now
	return r.db.WithContext(ctx).Create(collab).Error
}

func (r *RepositoryImpl) Update(ctx context.Context, collab *domain.Collaboration) error {
	collab.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(collab).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Collaboration, error) {
	var collab domain.Collaboration
	err := r.db.WithContext(ctx).First(&collab, id).Error
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *RepositoryImpl) FindByToken(ctx context.Context, token string) (*domain.Collaboration, error) {
	var collab domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("invitation_token = ?", token).
		First(&collab).Error
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *RepositoryImpl) FindActive(ctx context.Context, ref domain.EntityRef, userID uint64) (*domain.Collaboration, error) {
	var collab domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND collaborator_id = ? AND status = ?",
			ref.Type, ref.ID, userID, domain.CollabActive).
		First(&collab).Error
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *RepositoryImpl) FindLive(ctx context.Context, ref domain.EntityRef, email string) (*domain.Collaboration, error) {
	var collab domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND LOWER(collaborator_email) = LOWER(?) AND status IN ?",
			ref.Type, ref.ID, email, []string{domain.CollabPending, domain.CollabActive}).
		First(&collab).Error
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *RepositoryImpl) ListByEntity(ctx context.Context, ref domain.EntityRef) ([]domain.Collaboration, error) {
	var collabs []domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND status IN ?",
			ref.Type, ref.ID, []string{domain.CollabPending, domain.CollabActive}).
		Order("created_at ASC").
		Find(&collabs).Error
	return collabs, err
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userID uint64) ([]domain.Collaboration, error) {
	var collabs []domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("collaborator_id = ? AND status = ?", userID, domain.CollabActive).
		Order("created_at DESC").
		Find(&collabs).Error
	return collabs, err
}

func (r *RepositoryImpl) ListActiveMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&domain.Collaboration{}).
		Where("entity_type = ? AND entity_id = ? AND status = ? AND collaborator_id IS NOT NULL",
			ref.Type, ref.ID, domain.CollabActive).
		Pluck("collaborator_id", &ids).Error
	return ids, err
}

func (r *RepositoryImpl) CountLiveByOwner(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Collaboration{}).
		Where("owner_id = ? AND status IN ?",
			ownerID, []string{domain.CollabPending, domain.CollabActive}).
		Count(&count).Error
	return count, err
}

func (r *RepositoryImpl) ClaimForUser(ctx context.Context, userID uint64, email string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Collaboration{}).
		Where("LOWER(collaborator_email) = LOWER(?) AND collaborator_id IS NULL AND status IN ?",
			email, []string{domain.CollabPending, domain.CollabActive}).
		Update("collaborator_id", userID)
	return result.RowsAffected, result.Error
}

func (r *RepositoryImpl) CreateShareLink(ctx context.Context, link *domain.ShareLink) error {
	link.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *RepositoryImpl) FindShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	var link domain.ShareLink
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}
