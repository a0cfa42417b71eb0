package collaboration

import (
	"context"
	defError "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"taskhive/internal/domain"
	"taskhive/internal/email"
	"taskhive/internal/errors"
	"taskhive/internal/notification"
	"taskhive/internal/worker"
	"taskhive/redis"

	"gorm.io/gorm"
)

// IdentitySource is the external identity store.
type IdentitySource interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PlanService answers quota questions for a user's plan tier.
type PlanService interface {
	CollaboratorLimit(ctx context.Context, userID uint64) (int, error)
}

// Notifier is the slice of the notification dispatcher this service needs.
type Notifier interface {
	Notify(ctx context.Context, recipientID uint64, input notification.Input) (*domain.Notification, error)
	NotifyBulk(ctx context.Context, recipientIDs []uint64, input notification.Input)
}

type Service interface {
	ResolveAccess(ctx context.Context, ref domain.EntityRef, userID uint64) (Access, error)
	ListMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error)
	ListCollaborators(ctx context.Context, ref domain.EntityRef, requesterID uint64) ([]CollaboratorDTO, error)

	Invite(ctx context.Context, requesterID uint64, ref domain.EntityRef, inviteeEmail, role, message string) (*domain.Collaboration, error)
	Accept(ctx context.Context, token string, userID *uint64) (*domain.Collaboration, error)
	Decline(ctx context.Context, token string) error
	Cancel(ctx context.Context, requesterID, invitationID uint64) error
	UpdateRole(ctx context.Context, requesterID, recordID uint64, newRole string) (*domain.Collaboration, error)
	Remove(ctx context.Context, requesterID, recordID uint64) error
	ClaimInvitations(ctx context.Context, userID uint64, verifiedEmail string)

	CreateShareLink(ctx context.Context, requesterID uint64, ref domain.EntityRef, role string) (*domain.ShareLink, error)
	RedeemShareLink(ctx context.Context, token string, userID uint64) (*domain.Collaboration, error)
}

type DefaultService struct {
	repository Repository
	resolver   *AccessResolver
	entities   EntitySource
	users      IdentitySource
	plans      PlanService
	notifier   Notifier
	mailer     email.Dispatcher
	pool       *worker.WorkerPool
	cache      *redis.Cache

	frontendAddress string
	inviteTTL       time.Duration
	now             func() time.Time
}

func NewService(
	repository Repository,
	resolver *AccessResolver,
	entities EntitySource,
	users IdentitySource,
	plans PlanService,
	notifier Notifier,
	mailer email.Dispatcher,
	pool *worker.WorkerPool,
	cache *redis.Cache,
	frontendAddress string,
	inviteTTL time.Duration,
) *DefaultService {
	return &DefaultService{
		repository:      repository,
		resolver:        resolver,
		entities:        entities,
		users:           users,
		plans:           plans,
		notifier:        notifier,
		mailer:          mailer,
		pool:            pool,
		cache:           cache,
		frontendAddress: frontendAddress,
		inviteTTL:       inviteTTL,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *DefaultService) ResolveAccess(ctx context.Context, ref domain.EntityRef, userID uint64) (Access, error) {
	return s.resolver.ResolveAccess(ctx, ref, userID)
}

// ListMemberIDs returns the owner plus every bound active collaborator.
func (s *DefaultService) ListMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error) {
	ownerID, _, err := s.entities.Describe(ctx, ref)
	if err != nil {
		return nil, err
	}

	collabIDs, err := s.repository.ListActiveMemberIDs(ctx, ref)
	if err != nil {
		return nil, err
	}

	return append([]uint64{ownerID}, collabIDs...), nil
}

type CollaboratorDTO struct {
	ID             uint64     `json:"id"`
	Email          string     `json:"email"`
	UserID         *uint64    `json:"user_id,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	InvitedByID    uint64     `json:"invited_by_id"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	TokenExpiresAt time.Time  `json:"token_expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ListCollaborators returns the live membership of an entity. Status is
// derived at read time, so a stale pending row reads as expired.
func (s *DefaultService) ListCollaborators(ctx context.Context, ref domain.EntityRef, requesterID uint64) ([]CollaboratorDTO, error) {
	access, err := s.resolver.ResolveAccess(ctx, ref, requesterID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess {
		return nil, errors.Forbidden("You don't have access to this entity", nil)
	}
	// viewers may read the entity but not its membership
	if access.Role == domain.RoleViewer {
		return nil, errors.Forbidden("Viewer can't show collaborators", nil)
	}

	rows, err := s.repository.ListByEntity(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]CollaboratorDTO, 0, len(rows))
	for _, r := range rows {
		result = append(result, CollaboratorDTO{
			ID:             r.ID,
			Email:          r.CollaboratorEmail,
			UserID:         r.CollaboratorID,
			Role:           r.Role,
			Status:         r.StatusAt(now),
			InvitedByID:    r.InvitedByID,
			AcceptedAt:     r.AcceptedAt,
			TokenExpiresAt: r.TokenExpiresAt,
			CreatedAt:      r.CreatedAt,
		})
	}

	return result, nil
}

// Invite creates a pending collaboration and mails the invitee. Owner only.
func (s *DefaultService) Invite(ctx context.Context, requesterID uint64, ref domain.EntityRef, inviteeEmail, role, message string) (*domain.Collaboration, error) {
	if !domain.ValidInviteRole(role) {
		return nil, errors.BadRequest("Invalid role", nil)
	}

	ownerID, title, err := s.entities.Describe(ctx, ref)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Entity not found", err)
		}
		return nil, err
	}
	if ownerID != requesterID {
		return nil, errors.Forbidden("Only owner can invite collaborators", nil)
	}

	owner, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(owner.Email, inviteeEmail) {
		return nil, errors.BadRequest("Can't invite yourself", nil)
	}

	// plan-level collaborator ceiling, delegated to the plan service
	limit, err := s.plans.CollaboratorLimit(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	liveCount, err := s.repository.CountLiveByOwner(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if liveCount >= int64(limit) {
		return nil, errors.BadRequest(
			fmt.Sprintf("Collaborator limit of %d reached for your plan", limit), nil)
	}

	now := s.now()
	if existing, err := s.repository.FindLive(ctx, ref, inviteeEmail); err == nil {
		// a stale pending row past its expiry doesn't block a re-invite;
		// heal it on the way through
		if existing.StatusAt(now) != domain.CollabExpired {
			return nil, errors.Conflict("User already invited or collaborating", nil)
		}
		existing.Status = domain.CollabExpired
		if err := s.repository.Update(ctx, existing); err != nil {
			return nil, err
		}
	} else if !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	collab := &domain.Collaboration{
		EntityType:        ref.Type,
		EntityID:          ref.ID,
		OwnerID:           ownerID,
		CollaboratorEmail: strings.ToLower(inviteeEmail),
		Role:              role,
		Status:            domain.CollabPending,
		InvitationToken:   token,
		TokenExpiresAt:    now.Add(s.inviteTTL),
		InvitedByID:       requesterID,
	}
	if message != "" {
		collab.ShareMessage = &message
	}

	// bind immediately when the invitee already has an account
	if invitee, err := s.users.FindByEmail(ctx, inviteeEmail); err == nil {
		collab.CollaboratorID = &invitee.ID
	}

	if err := s.repository.Create(ctx, collab); err != nil {
		// the partial unique index arbitrates concurrent invites
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("User already invited or collaborating", err)
		}
		return nil, err
	}

	s.sendInvitationMail(owner.Name, title, collab)
	s.fanOut(ctx, ref, requesterID, notification.Input{
		SenderID:  requesterID,
		Type:      notification.TypeCollaboratorAdded,
		Title:     "New collaborator invited",
		Message:   fmt.Sprintf("%s invited %s to \"%s\" as %s", owner.Name, inviteeEmail, title, role),
		Entity:    ref,
		ActionURL: s.entityURL(ref),
	})
	s.invalidateUserCaches(ctx, requesterID)

	return collab, nil
}

// Accept flips a pending invitation to active. Time is the ground truth
// for expiry, whatever the stored status says; a second accept on an
// already-active token fails rather than silently succeeding.
func (s *DefaultService) Accept(ctx context.Context, token string, userID *uint64) (*domain.Collaboration, error) {
	collab, err := s.repository.FindByToken(ctx, token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Invitation not found", err)
		}
		return nil, err
	}

	switch collab.Status {
	case domain.CollabActive:
		return nil, errors.BadRequest("Invitation already accepted", nil)
	case domain.CollabRemoved, domain.CollabExpired:
		return nil, errors.BadRequest("Invitation is no longer valid", nil)
	}

	now := s.now()
	if now.After(collab.TokenExpiresAt) {
		// heal the lagging status column while we're here
		collab.Status = domain.CollabExpired
		if err := s.repository.Update(ctx, collab); err != nil {
			log.Printf("[COLLAB] failed to mark invitation %d expired: %v", collab.ID, err)
		}
		return nil, errors.Expired("Invitation has expired", nil)
	}

	var accepter *domain.User
	if userID != nil {
		accepter, err = s.users.GetUserByID(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if accepter.Email != "" && !strings.EqualFold(accepter.Email, collab.CollaboratorEmail) {
			return nil, errors.Forbidden("Invitation was issued to a different email", nil)
		}
		collab.CollaboratorID = userID
	}
	// userID == nil is the anonymous accept: the record stays bound to the
	// email and is claimed at the invitee's first login

	collab.Status = domain.CollabActive
	collab.AcceptedAt = &now
	if err := s.repository.Update(ctx, collab); err != nil {
		return nil, err
	}

	senderID := uint64(0)
	accepterName := collab.CollaboratorEmail
	if accepter != nil {
		senderID = accepter.ID
		accepterName = accepter.Name
	}

	_, title, err := s.entities.Describe(ctx, collab.Ref())
	if err != nil {
		title = ""
	}

	if _, err := s.notifier.Notify(ctx, collab.OwnerID, notification.Input{
		SenderID:  senderID,
		Type:      notification.TypeMemberJoined,
		Title:     "Invitation accepted",
		Message:   fmt.Sprintf("%s joined \"%s\" as %s", accepterName, title, collab.Role),
		Entity:    collab.Ref(),
		ActionURL: s.entityURL(collab.Ref()),
	}); err != nil {
		log.Printf("[COLLAB] failed to notify owner %d about acceptance: %v", collab.OwnerID, err)
	}

	s.sendAcceptanceMail(collab.OwnerID, accepterName, title)
	s.invalidateUserCaches(ctx, collab.OwnerID)
	if collab.CollaboratorID != nil {
		s.invalidateUserCaches(ctx, *collab.CollaboratorID)
	}

	return collab, nil
}

// Decline marks a pending invitation removed. Works without
// authentication so the email link can do it.
func (s *DefaultService) Decline(ctx context.Context, token string) error {
	collab, err := s.repository.FindByToken(ctx, token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Invitation not found", err)
		}
		return err
	}

	if collab.Status != domain.CollabPending {
		return errors.BadRequest("Invitation is no longer pending", nil)
	}

	now := s.now()
	collab.Status = domain.CollabRemoved
	collab.RemovedAt = &now
	if err := s.repository.Update(ctx, collab); err != nil {
		return err
	}

	if _, err := s.notifier.Notify(ctx, collab.OwnerID, notification.Input{
		SenderID:  0,
		Type:      notification.TypeMemberLeft,
		Title:     "Invitation declined",
		Message:   fmt.Sprintf("%s declined your invitation", collab.CollaboratorEmail),
		Entity:    collab.Ref(),
		ActionURL: s.entityURL(collab.Ref()),
	}); err != nil {
		log.Printf("[COLLAB] failed to notify owner %d about decline: %v", collab.OwnerID, err)
	}

	s.invalidateUserCaches(ctx, collab.OwnerID)
	return nil
}

// Cancel withdraws a pending invitation. Owner only.
func (s *DefaultService) Cancel(ctx context.Context, requesterID, invitationID uint64) error {
	collab, err := s.repository.FindByID(ctx, invitationID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Invitation not found", err)
		}
		return err
	}

	if collab.OwnerID != requesterID {
		return errors.Forbidden("Only owner can cancel an invitation", nil)
	}
	if collab.StatusAt(s.now()) != domain.CollabPending {
		return errors.BadRequest("Only pending invitations can be cancelled", nil)
	}

	now := s.now()
	collab.Status = domain.CollabRemoved
	collab.RemovedAt = &now
	if err := s.repository.Update(ctx, collab); err != nil {
		return err
	}

	s.invalidateUserCaches(ctx, requesterID)
	return nil
}

// UpdateRole changes an active collaborator's role in place. Owner only,
// no state transition.
func (s *DefaultService) UpdateRole(ctx context.Context, requesterID, recordID uint64, newRole string) (*domain.Collaboration, error) {
	if !domain.ValidInviteRole(newRole) {
		return nil, errors.BadRequest("Invalid role", nil)
	}

	collab, err := s.repository.FindByID(ctx, recordID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Collaboration not found", err)
		}
		return nil, err
	}

	if collab.OwnerID != requesterID {
		return nil, errors.Forbidden("Only owner can change roles", nil)
	}
	if collab.Status != domain.CollabActive {
		return nil, errors.BadRequest("Only active collaborators can change role", nil)
	}
	if collab.Role == newRole {
		return nil, errors.UnprocessableEntity("Collaborator already has this role", nil)
	}

	oldRole := collab.Role
	collab.Role = newRole
	if err := s.repository.Update(ctx, collab); err != nil {
		return nil, err
	}

	if collab.CollaboratorID != nil {
		if _, err := s.notifier.Notify(ctx, *collab.CollaboratorID, notification.Input{
			SenderID:  requesterID,
			Type:      notification.TypeRoleChanged,
			Title:     "Your role changed",
			Message:   fmt.Sprintf("Your role changed from %s to %s", oldRole, newRole),
			Entity:    collab.Ref(),
			ActionURL: s.entityURL(collab.Ref()),
		}); err != nil {
			log.Printf("[COLLAB] failed to notify user %d about role change: %v", *collab.CollaboratorID, err)
		}
		s.invalidateUserCaches(ctx, *collab.CollaboratorID)
	}
	s.invalidateUserCaches(ctx, requesterID)

	return collab, nil
}

// Remove revokes an active collaborator. Owner only. Already-delivered
// notifications stay as they are.
func (s *DefaultService) Remove(ctx context.Context, requesterID, recordID uint64) error {
	collab, err := s.repository.FindByID(ctx, recordID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Collaboration not found", err)
		}
		return err
	}

	if collab.OwnerID != requesterID {
		return errors.Forbidden("Only owner can remove a collaborator", nil)
	}
	if collab.Status != domain.CollabActive {
		return errors.BadRequest("Only active collaborators can be removed", nil)
	}

	now := s.now()
	collab.Status = domain.CollabRemoved
	collab.RemovedAt = &now
	if err := s.repository.Update(ctx, collab); err != nil {
		return err
	}

	if collab.CollaboratorID != nil {
		if _, err := s.notifier.Notify(ctx, *collab.CollaboratorID, notification.Input{
			SenderID:  requesterID,
			Type:      notification.TypeCollaboratorRemoved,
			Title:     "Access removed",
			Message:   "Your access to this entity was removed by the owner",
			Entity:    collab.Ref(),
			ActionURL: s.frontendAddress,
		}); err != nil {
			log.Printf("[COLLAB] failed to notify user %d about removal: %v", *collab.CollaboratorID, err)
		}
		s.invalidateUserCaches(ctx, *collab.CollaboratorID)
	}

	s.fanOut(ctx, collab.Ref(), requesterID, notification.Input{
		SenderID:  requesterID,
		Type:      notification.TypeMemberLeft,
		Title:     "Collaborator removed",
		Message:   fmt.Sprintf("%s no longer collaborates here", collab.CollaboratorEmail),
		Entity:    collab.Ref(),
		ActionURL: s.entityURL(collab.Ref()),
	})
	s.invalidateUserCaches(ctx, requesterID)

	return nil
}

// ClaimInvitations binds every late-bound record matching the verified
// email to the user. Run once per login; idempotent by construction.
func (s *DefaultService) ClaimInvitations(ctx context.Context, userID uint64, verifiedEmail string) {
	claimed, err := s.repository.ClaimForUser(ctx, userID, verifiedEmail)
	if err != nil {
		log.Printf("[COLLAB] failed to claim invitations for user %d: %v", userID, err)
		return
	}
	if claimed > 0 {
		log.Printf("[COLLAB] claimed %d invitation(s) for user %d", claimed, userID)
		s.invalidateUserCaches(ctx, userID)
	}
}

// CreateShareLink mints an entity-scoped token granting a fixed role to
// whoever redeems it. Owner only; no named invitee.
func (s *DefaultService) CreateShareLink(ctx context.Context, requesterID uint64, ref domain.EntityRef, role string) (*domain.ShareLink, error) {
	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.ValidInviteRole(role) {
		return nil, errors.BadRequest("Invalid role", nil)
	}

	ownerID, _, err := s.entities.Describe(ctx, ref)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Entity not found", err)
		}
		return nil, err
	}
	if ownerID != requesterID {
		return nil, errors.Forbidden("Only owner can create share links", nil)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	link := &domain.ShareLink{
		EntityType:  ref.Type,
		EntityID:    ref.ID,
		Token:       token,
		Role:        role,
		CreatedByID: requesterID,
		ExpiresAt:   s.now().Add(s.inviteTTL),
	}

	if err := s.repository.CreateShareLink(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// RedeemShareLink turns a share-link token into a normal active
// collaboration, so access resolution stays single-sourced.
func (s *DefaultService) RedeemShareLink(ctx context.Context, token string, userID uint64) (*domain.Collaboration, error) {
	link, err := s.repository.FindShareLinkByToken(ctx, token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Share link not found", err)
		}
		return nil, err
	}

	now := s.now()
	if link.ExpiredAt(now) {
		return nil, errors.Expired("Share link has expired", nil)
	}

	ref := domain.EntityRef{Type: link.EntityType, ID: link.EntityID}
	ownerID, title, err := s.entities.Describe(ctx, ref)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Entity not found", err)
		}
		return nil, err
	}
	if ownerID == userID {
		return nil, errors.BadRequest("You already own this entity", nil)
	}

	redeemer, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	collabToken, err := generateToken()
	if err != nil {
		return nil, err
	}

	collab := &domain.Collaboration{
		EntityType:        ref.Type,
		EntityID:          ref.ID,
		OwnerID:           ownerID,
		CollaboratorEmail: strings.ToLower(redeemer.Email),
		CollaboratorID:    &userID,
		Role:              link.Role,
		Status:            domain.CollabActive,
		InvitationToken:   collabToken,
		TokenExpiresAt:    link.ExpiresAt,
		InvitedByID:       link.CreatedByID,
		AcceptedAt:        &now,
	}

	if err := s.repository.Create(ctx, collab); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("You already collaborate on this entity", err)
		}
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, ownerID, notification.Input{
		SenderID:  userID,
		Type:      notification.TypeMemberJoined,
		Title:     "Share link used",
		Message:   fmt.Sprintf("%s joined \"%s\" via share link as %s", redeemer.Name, title, link.Role),
		Entity:    ref,
		ActionURL: s.entityURL(ref),
	}); err != nil {
		log.Printf("[COLLAB] failed to notify owner %d about share-link join: %v", ownerID, err)
	}

	s.invalidateUserCaches(ctx, ownerID, userID)
	return collab, nil
}

// fanOut notifies every current member of the entity except the actor.
func (s *DefaultService) fanOut(ctx context.Context, ref domain.EntityRef, actorID uint64, input notification.Input) {
	memberIDs, err := s.ListMemberIDs(ctx, ref)
	if err != nil {
		log.Printf("[COLLAB] failed to list members of %s %d for fan-out: %v", ref.Type, ref.ID, err)
		return
	}

	recipients := make([]uint64, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != actorID {
			recipients = append(recipients, id)
		}
	}

	s.notifier.NotifyBulk(ctx, recipients, input)
}

func (s *DefaultService) sendInvitationMail(inviterName, entityTitle string, collab *domain.Collaboration) {
	mail := email.InvitationMail{
		To:           collab.CollaboratorEmail,
		InviterName:  inviterName,
		EntityTitle:  entityTitle,
		Role:         collab.Role,
		AcceptURL:    fmt.Sprintf("%s/invitations/%s/accept", s.frontendAddress, collab.InvitationToken),
		DeclineURL:   fmt.Sprintf("%s/invitations/%s/decline", s.frontendAddress, collab.InvitationToken),
		ExpiresAtISO: collab.TokenExpiresAt.Format(time.RFC3339),
	}
	if collab.ShareMessage != nil {
		mail.Message = *collab.ShareMessage
	}

	s.pool.Submit(func(ctx context.Context) error {
		if err := s.mailer.SendInvitation(ctx, mail); err != nil {
			log.Printf("[MAILER ERROR] failed to send invitation to %s: %v", mail.To, err)
		}
		return nil
	})
}

func (s *DefaultService) sendAcceptanceMail(ownerID uint64, collaboratorName, entityTitle string) {
	s.pool.Submit(func(ctx context.Context) error {
		owner, err := s.users.GetUserByID(ctx, ownerID)
		if err != nil {
			return err
		}
		mail := email.AcceptanceMail{
			To:               owner.Email,
			CollaboratorName: collaboratorName,
			EntityTitle:      entityTitle,
		}
		if err := s.mailer.SendAcceptance(ctx, mail); err != nil {
			log.Printf("[MAILER ERROR] failed to send acceptance mail to %s: %v", mail.To, err)
		}
		return nil
	})
}

func (s *DefaultService) entityURL(ref domain.EntityRef) string {
	return fmt.Sprintf("%s/%ss/%d", s.frontendAddress, ref.Type, ref.ID)
}

// invalidateUserCaches bumps the task-read version for each user so their
// next list fetch misses the cache.
func (s *DefaultService) invalidateUserCaches(ctx context.Context, userIDs ...uint64) {
	for _, id := range userIDs {
		s.cache.IncrementVersion(ctx, fmt.Sprintf("user:%d:tasks:version", id))
	}
}
