package task

import (
	"context"
	defError "errors"
	"fmt"
	"log"
	"time"

	"taskhive/internal/collaboration"
	"taskhive/internal/domain"
	"taskhive/internal/errors"
	"taskhive/internal/notification"
	"taskhive/redis"

	"gorm.io/gorm"
)

// CollabSource is the slice of the collaboration core this service calls:
// authorization before every mutation, membership after every success.
type CollabSource interface {
	ResolveAccess(ctx context.Context, ref domain.EntityRef, userID uint64) (collaboration.Access, error)
	ListMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error)
}

type Notifier interface {
	Notify(ctx context.Context, recipientID uint64, input notification.Input) (*domain.Notification, error)
	NotifyBulk(ctx context.Context, recipientIDs []uint64, input notification.Input)
}

type Service interface {
	CreateTask(ctx context.Context, userID uint64, task *domain.Task) error
	GetTask(ctx context.Context, taskID, userID uint64) (*TaskShowResponse, error)
	UpdateTask(ctx context.Context, taskID, userID uint64, updates UpdateInput) (*domain.Task, error)
	ToggleComplete(ctx context.Context, taskID, userID uint64) (*domain.Task, error)
	RequestReview(ctx context.Context, taskID, userID uint64, note string) error
	DeleteTask(ctx context.Context, taskID, userID uint64) error
	RestoreTask(ctx context.Context, taskID, userID uint64) (*domain.Task, error)
	ListOwnTasks(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedTasks, error)
	ListSharedTasks(ctx context.Context, userID uint64, page, pageSize int) ([]SharedTaskRow, Meta, error)
}

type DefaultService struct {
	repository Repository
	collab     CollabSource
	notifier   Notifier
	cache      *redis.Cache
	frontend   string
}

func NewService(
	repository Repository,
	collab CollabSource,
	notifier Notifier,
	cache *redis.Cache,
	frontend string,
) Service {
	return &DefaultService{
		repository: repository,
		collab:     collab,
		notifier:   notifier,
		cache:      cache,
		frontend:   frontend,
	}
}

func (s *DefaultService) CreateTask(ctx context.Context, userID uint64, task *domain.Task) error {
	if task.Title == "" {
		return errors.BadRequest("Title cannot be empty", nil)
	}

	if err := s.repository.Create(ctx, userID, task); err != nil {
		return err
	}

	s.bumpListVersion(ctx, userID)
	return nil
}

type TaskShowResponse struct {
	Task *domain.Task `json:"task"`
	Role string       `json:"role"`
}

func (s *DefaultService) GetTask(ctx context.Context, taskID, userID uint64) (*TaskShowResponse, error) {
	ref := domain.EntityRef{Type: domain.EntityTask, ID: taskID}
	access, err := s.collab.ResolveAccess(ctx, ref, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess {
		return nil, errors.Forbidden("You don't have access to this task", nil)
	}

	// single-item reads cache longer than the volatile list views
	version := s.cache.GetVersion(ctx, fmt.Sprintf("task:%d:version", taskID))
	cacheKey := fmt.Sprintf("task:%d:v:%d", taskID, version)

	var cached domain.Task
	if found, _ := s.cache.Get(ctx, cacheKey, &cached); found {
		return &TaskShowResponse{Task: &cached, Role: access.Role}, nil
	}

	task, err := s.repository.FindByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Task not found", err)
		}
		return nil, err
	}

	go s.cache.Set(context.Background(), cacheKey, task, time.Hour)

	return &TaskShowResponse{Task: task, Role: access.Role}, nil
}

type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

func (s *DefaultService) UpdateTask(ctx context.Context, taskID, userID uint64, updates UpdateInput) (*domain.Task, error) {
	ref := domain.EntityRef{Type: domain.EntityTask, ID: taskID}
	access, err := s.collab.ResolveAccess(ctx, ref, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess {
		return nil, errors.Forbidden("You don't have access to this task", nil)
	}
	if !access.CanEdit() {
		return nil, errors.Forbidden("Your role can't edit this task. Request a review instead.", nil)
	}

	task, err := s.repository.FindByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Task not found", err)
		}
		return nil, err
	}

	if updates.Title != nil {
		if *updates.Title == "" {
			return nil, errors.BadRequest("Title cannot be empty", nil)
		}
		task.Title = *updates.Title
	}
	if updates.Description != nil {
		task.Description = updates.Description
	}
	if updates.Category != nil {
		task.Category = *updates.Category
	}
	if updates.Status != nil {
		task.Status = *updates.Status
	}
	if updates.Priority != nil {
		task.Priority = *updates.Priority
	}
	if updates.DueDate != nil {
		task.DueDate = updates.DueDate
	}

	if err := s.repository.Update(ctx, task); err != nil {
		return nil, err
	}

	s.fanOut(ctx, ref, userID, notification.Input{
		SenderID:  userID,
		Type:      notification.TypeEntityUpdated,
		Title:     "Task updated",
		Message:   fmt.Sprintf("\"%s\" was updated", task.Title),
		Entity:    ref,
		ActionURL: s.taskURL(taskID),
	})
	s.invalidateTaskReads(ctx, ref, taskID)

	return task, nil
}

// ToggleComplete flips completion. Owners and editors only; everyone else
// is told to raise a review request instead.
func (s *DefaultService) ToggleComplete(ctx context.Context, taskID, userID uint64) (*domain.Task, error) {
	ref := domain.EntityRef{Type: domain.EntityTask, ID: taskID}
	access, err := s.collab.ResolveAccess(ctx, ref, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess {
		return nil, errors.Forbidden("You don't have access to this task", nil)
	}
	if !access.CanEdit() {
		return nil, errors.Forbidden("Your role can't complete tasks directly. Request a review instead.", nil)
	}

	task, err := s.repository.FindByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Task not found", err)
		}
		return nil, err
	}

	task.Completed = !task.Completed
	if err := s.repository.Update(ctx, task); err != nil {
		return nil, err
	}

	verb := "reopened"
	if task.Completed {
		verb = "completed"
	}
	s.fanOut(ctx, ref, userID, notification.Input{
		SenderID:  userID,
		Type:      notification.TypeEntityCompleted,
		Title:     "Task " + verb,
		Message:   fmt.Sprintf("\"%s\" was %s", task.Title, verb),
		Entity:    ref,
		ActionURL: s.taskURL(taskID),
	})
	s.invalidateTaskReads(ctx, ref, taskID)

	return task, nil
}

// RequestReview lets assignees and viewers ask the owner to complete or
// amend the task, since they can't mutate it themselves.
func (s *DefaultService) RequestReview(ctx context.Context, taskID, userID uint64, note string) error {
	ref := domain.EntityRef{Type: domain.EntityTask, ID: taskID}
	access, err := s.collab.ResolveAccess(ctx, ref, userID)
	if err != nil {
		return err
	}
	if !access.CanAccess {
		return errors.Forbidden("You don't have access to this task", nil)
	}
	if access.CanEdit() {
		return errors.BadRequest("Your role can complete tasks directly, no review needed", nil)
	}

	task, err := s.repository.FindByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Task not found", err)
		}
		return err
	}

	message := fmt.Sprintf("Review requested on \"%s\"", task.Title)
	if note != "" {
		message = fmt.Sprintf("%s: %s", message, note)
	}

	if _, err := s.notifier.Notify(ctx, task.UserID, notification.Input{
		SenderID:  userID,
		Type:      notification.TypeReviewRequested,
		Title:     "Review requested",
		Message:   message,
		Entity:    ref,
		ActionURL: s.taskURL(taskID),
	}); err != nil {
		return err
	}

	return nil
}

func (s *DefaultService) DeleteTask(ctx context.Context, taskID, userID uint64) error {
	ref := domain.EntityRef{Type: domain.EntityTask, ID: taskID}
	access, err := s.collab.ResolveAccess(ctx, ref, userID)
	if err != nil {
		return err
	}
	if !access.IsOwner {
		return errors.Forbidden("Only owner can delete a task", nil)
	}

	task, err := s.repository.FindByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Task not found", err)
		}
		return err
	}

	// membership has to be read before the row disappears
	memberIDs, err := s.collab.ListMemberIDs(ctx, ref)
	if err != nil {
		log.Printf("[TASK] failed to list members of task %d before delete: %v", taskID, err)
		memberIDs = nil
	}

	if err := s.repository.Delete(ctx, taskID); err != nil {
		return err
	}

	s.notifier.NotifyBulk(ctx, exclude(memberIDs, userID), notification.Input{
		SenderID:  userID,
		Type:      notification.TypeEntityDeleted,
		Title:     "Task deleted",
		Message:   fmt.Sprintf("\"%s\" was deleted", task.Title),
		Entity:    ref,
		ActionURL: s.frontend,
	})
	s.invalidateMembers(ctx, memberIDs)
	s.cache.IncrementVersion(ctx, fmt.Sprintf("task:%d:version", taskID))

	return nil
}

func (s *DefaultService) RestoreTask(ctx context.Context, taskID, userID uint64) (*domain.Task, error) {
	task, err := s.repository.FindDeletedByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Deleted task not found", err)
		}
		return nil, err
	}

	if task.UserID != userID {
		return nil, errors.Forbidden("Only owner can restore a task", nil)
	}

	if err := s.repository.Restore(ctx, taskID); err != nil {
		return nil, err
	}
	task.DeletedAt = gorm.DeletedAt{}

	ref := domain.EntityRef{Type: domain.EntityTask, ID: taskID}
	s.fanOut(ctx, ref, userID, notification.Input{
		SenderID:  userID,
		Type:      notification.TypeEntityRestored,
		Title:     "Task restored",
		Message:   fmt.Sprintf("\"%s\" was restored", task.Title),
		Entity:    ref,
		ActionURL: s.taskURL(taskID),
	})
	s.invalidateTaskReads(ctx, ref, taskID)

	return task, nil
}

type PaginatedTasks struct {
	Data []domain.Task `json:"data"`
	Meta Meta          `json:"meta"`
}

func (s *DefaultService) ListOwnTasks(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedTasks, error) {
	versionKey := fmt.Sprintf("user:%d:tasks:version", userID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("tasks:u:%d:v:%d:p:%d:ps:%d", userID, v, page, pageSize)

	var result PaginatedTasks
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	tasks, meta, err := s.repository.ListByOwner(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedTasks{Data: tasks, Meta: meta}

	// list views are volatile, keep the TTL short
	go s.cache.Set(context.Background(), cacheKey, result, 10*time.Minute)

	return &result, nil
}

func (s *DefaultService) ListSharedTasks(ctx context.Context, userID uint64, page, pageSize int) ([]SharedTaskRow, Meta, error) {
	return s.repository.ListSharedWith(ctx, userID, page, pageSize)
}

// fanOut notifies every member of the entity except the actor.
func (s *DefaultService) fanOut(ctx context.Context, ref domain.EntityRef, actorID uint64, input notification.Input) {
	memberIDs, err := s.collab.ListMemberIDs(ctx, ref)
	if err != nil {
		log.Printf("[TASK] failed to list members of %s %d for fan-out: %v", ref.Type, ref.ID, err)
		return
	}

	s.notifier.NotifyBulk(ctx, exclude(memberIDs, actorID), input)
}

func exclude(ids []uint64, drop uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func (s *DefaultService) invalidateTaskReads(ctx context.Context, ref domain.EntityRef, taskID uint64) {
	memberIDs, err := s.collab.ListMemberIDs(ctx, ref)
	if err != nil {
		log.Printf("[TASK] failed to list members of task %d for invalidation: %v", taskID, err)
	}
	s.invalidateMembers(ctx, memberIDs)
	s.cache.IncrementVersion(ctx, fmt.Sprintf("task:%d:version", taskID))
}

func (s *DefaultService) invalidateMembers(ctx context.Context, memberIDs []uint64) {
	for _, id := range memberIDs {
		s.bumpListVersion(ctx, id)
	}
}

func (s *DefaultService) bumpListVersion(ctx context.Context, userID uint64) {
	s.cache.IncrementVersion(ctx, fmt.Sprintf("user:%d:tasks:version", userID))
}

func (s *DefaultService) taskURL(taskID uint64) string {
	return fmt.Sprintf("%s/tasks/%d", s.frontend, taskID)
}
