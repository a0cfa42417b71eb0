package collaboration

import (
	"context"
	defError "errors"

	"taskhive/internal/domain"
	"taskhive/internal/errors"

	"gorm.io/gorm"
)

// EntitySource is the external entity store: ownership and a display title
// for one shareable entity, whatever its kind.
type EntitySource interface {
	// Describe returns the owner id and title. gorm.ErrRecordNotFound when
	// the entity does not exist.
	Describe(ctx context.Context, ref domain.EntityRef) (ownerID uint64, title string, err error)
}

// Access is the answer to "may this user touch this entity, and as what".
type Access struct {
	CanAccess bool   `json:"can_access"`
	Role      string `json:"role,omitempty"`
	IsOwner   bool   `json:"is_owner"`
}

// CanEdit reports whether the role may mutate entity fields or mark
// completion directly. Assignees and viewers must raise a review request.
func (a Access) CanEdit() bool {
	return a.CanAccess && domain.RoleAtLeast(a.Role, domain.RoleEditor)
}

// AccessResolver maps (entity, user) to a role. Pure lookup, no side
// effects, safe to call from anywhere.
type AccessResolver struct {
	entities EntitySource
	repo     Repository
}

func NewAccessResolver(entities EntitySource, repo Repository) *AccessResolver {
	return &AccessResolver{entities: entities, repo: repo}
}

// ResolveAccess grants owner to the entity's owner, otherwise the role of
// the unique active collaboration record, otherwise nothing.
func (r *AccessResolver) ResolveAccess(ctx context.Context, ref domain.EntityRef, userID uint64) (Access, error) {
	ownerID, _, err := r.entities.Describe(ctx, ref)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, errors.NotFound("Entity not found", err)
		}
		return Access{}, err
	}

	if ownerID == userID {
		return Access{CanAccess: true, Role: domain.RoleOwner, IsOwner: true}, nil
	}

	collab, err := r.repo.FindActive(ctx, ref, userID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, nil
		}
		return Access{}, err
	}

	return Access{CanAccess: true, Role: collab.Role, IsOwner: false}, nil
}
