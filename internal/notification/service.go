package notification

import (
	"context"
	defError "errors"
	"log"

	"taskhive/internal/domain"
	"taskhive/internal/errors"
	"taskhive/internal/push"
	"taskhive/internal/worker"

	"gorm.io/gorm"
)

// OnlineChecker decides whether a recipient has any live connection.
type OnlineChecker interface {
	IsOnline(ctx context.Context, userID uint64) bool
}

// LiveChannel delivers an event to a user's live sockets, silently
// no-opping when there are none.
type LiveChannel interface {
	SendToUser(userID uint64, eventName string, payload any)
}

// RecipientSource resolves recipients, for the push-enabled flag.
type RecipientSource interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
}

type Service interface {
	Notify(ctx context.Context, recipientID uint64, input Input) (*domain.Notification, error)
	NotifyBulk(ctx context.Context, recipientIDs []uint64, input Input)

	ListNotifications(ctx context.Context, recipientID uint64, unreadOnly bool, page, pageSize int) ([]domain.Notification, Meta, error)
	GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID uint64) error
	MarkAllRead(ctx context.Context, recipientID uint64) error
	DeleteNotification(ctx context.Context, recipientID, notificationID uint64) error

	Subscribe(ctx context.Context, sub *domain.PushSubscription) error
	Unsubscribe(ctx context.Context, userID, subID uint64) error
}

// Input is one logical business event addressed to one recipient.
type Input struct {
	SenderID  uint64
	Type      string
	Title     string
	Message   string
	Entity    domain.EntityRef
	ActionURL string
}

type DefaultService struct {
	repository Repository
	presence   OnlineChecker
	live       LiveChannel
	pushSender push.Sender
	users      RecipientSource
	pool       *worker.WorkerPool
}

func NewService(
	repository Repository,
	presence OnlineChecker,
	live LiveChannel,
	pushSender push.Sender,
	users RecipientSource,
	pool *worker.WorkerPool,
) Service {
	return &DefaultService{
		repository: repository,
		presence:   presence,
		live:       live,
		pushSender: pushSender,
		users:      users,
		pool:       pool,
	}
}

// Notify writes the durable record, then amplifies it over the live and
// push channels. Only the durable write can fail the call: once the row
// exists the in-app bell will show it on next load regardless of what the
// side channels do.
func (s *DefaultService) Notify(ctx context.Context, recipientID uint64, input Input) (*domain.Notification, error) {
	return s.notifyOne(ctx, recipientID, input)
}

func (s *DefaultService) notifyOne(ctx context.Context, recipientID uint64, input Input) (*domain.Notification, error) {
	if !KnownType(input.Type) {
		return nil, errors.BadRequest("Unknown notification type", nil)
	}

	record := &domain.Notification{
		RecipientID: recipientID,
		SenderID:    input.SenderID,
		Type:        input.Type,
		Title:       input.Title,
		Message:     input.Message,
		EntityType:  input.Entity.Type,
		EntityID:    input.Entity.ID,
		ActionURL:   input.ActionURL,
		Priority:    PriorityFor(input.Type),
	}

	if err := s.repository.Create(ctx, record); err != nil {
		return nil, err
	}

	s.deliverLive(ctx, record)
	s.dispatchPush(recipientID, record)

	return record, nil
}

// NotifyBulk fans one event out to many recipients, each independently:
// one recipient's failure never blocks the others. The sender is always
// excluded, whatever the caller passed.
func (s *DefaultService) NotifyBulk(ctx context.Context, recipientIDs []uint64, input Input) {
	seen := make(map[uint64]bool, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		if recipientID == input.SenderID || seen[recipientID] {
			continue
		}
		seen[recipientID] = true

		if _, err := s.notifyOne(ctx, recipientID, input); err != nil {
			log.Printf("[NOTIFY] failed to notify user %d about %s: %v", recipientID, input.Type, err)
		}
	}
}

// deliverLive pushes the fresh record plus the recomputed unread count to
// the recipient's sockets, if presence says anyone is listening.
func (s *DefaultService) deliverLive(ctx context.Context, record *domain.Notification) {
	if !s.presence.IsOnline(ctx, record.RecipientID) {
		return
	}

	unread, err := s.repository.UnreadCount(ctx, record.RecipientID)
	if err != nil {
		log.Printf("[NOTIFY] failed to count unread for user %d: %v", record.RecipientID, err)
	}

	s.live.SendToUser(record.RecipientID, "notification", map[string]any{
		"notification": record,
		"unread_count": unread,
	})
}

// dispatchPush queues best-effort web push to every registered endpoint of
// the recipient, not conditioned on presence: a user with a live tab may
// still want the device notification.
func (s *DefaultService) dispatchPush(recipientID uint64, record *domain.Notification) {
	payload := push.Payload{
		Title:     record.Title,
		Body:      record.Message,
		ActionURL: record.ActionURL,
		Priority:  record.Priority,
	}

	s.pool.Submit(func(ctx context.Context) error {
		recipient, err := s.users.GetUserByID(ctx, recipientID)
		if err != nil {
			return err
		}
		if !recipient.PushEnabled {
			return nil
		}

		subs, err := s.repository.ListSubscriptions(ctx, recipientID)
		if err != nil {
			return err
		}

		for _, sub := range subs {
			err := s.pushSender.Send(ctx, sub, payload)
			if err == nil {
				continue
			}
			if defError.Is(err, push.ErrSubscriptionGone) {
				// endpoint is permanently gone, stop trying it
				if err := s.repository.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); err != nil {
					log.Printf("[PUSH] failed to prune subscription %s: %v", sub.Endpoint, err)
				} else {
					log.Printf("[PUSH] pruned gone subscription for user %d", recipientID)
				}
				continue
			}
			// transient, leave the subscription alone
			log.Printf("[PUSH] transient failure for user %d: %v", recipientID, err)
		}
		return nil
	})
}

func (s *DefaultService) ListNotifications(ctx context.Context, recipientID uint64, unreadOnly bool, page, pageSize int) ([]domain.Notification, Meta, error) {
	return s.repository.ListByRecipient(ctx, recipientID, unreadOnly, page, pageSize)
}

func (s *DefaultService) GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	return s.repository.UnreadCount(ctx, recipientID)
}

func (s *DefaultService) MarkRead(ctx context.Context, recipientID, notificationID uint64) error {
	err := s.repository.MarkRead(ctx, recipientID, notificationID)
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("Notification not found", err)
	}
	return err
}

func (s *DefaultService) MarkAllRead(ctx context.Context, recipientID uint64) error {
	return s.repository.MarkAllRead(ctx, recipientID)
}

func (s *DefaultService) DeleteNotification(ctx context.Context, recipientID, notificationID uint64) error {
	err := s.repository.Delete(ctx, recipientID, notificationID)
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("Notification not found", err)
	}
	return err
}

func (s *DefaultService) Subscribe(ctx context.Context, sub *domain.PushSubscription) error {
	err := s.repository.CreateSubscription(ctx, sub)
	if defError.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Conflict("Subscription already registered", err)
	}
	return err
}

func (s *DefaultService) Unsubscribe(ctx context.Context, userID, subID uint64) error {
	err := s.repository.DeleteSubscriptionByID(ctx, userID, subID)
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("Subscription not found", err)
	}
	return err
}
