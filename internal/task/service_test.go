package task

import (
	"context"
	"testing"

	"taskhive/internal/collaboration"
	"taskhive/internal/domain"
	apiError "taskhive/internal/errors"
	"taskhive/internal/notification"
	"taskhive/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID uint64, task *domain.Task) error {
	args := m.Called(ctx, userID, task)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockRepository) FindDeletedByID(ctx context.Context, id uint64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) Restore(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListByOwner(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Task, Meta, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(Meta), args.Error(2)
	}
	return args.Get(0).([]domain.Task), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) ListSharedWith(ctx context.Context, userID uint64, page, pageSize int) ([]SharedTaskRow, Meta, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(Meta), args.Error(2)
	}
	return args.Get(0).([]SharedTaskRow), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) Describe(ctx context.Context, ref domain.EntityRef) (uint64, string, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(uint64), args.String(1), args.Error(2)
}

// fakeCollab answers access and membership from fixed data.
type fakeCollab struct {
	access  map[uint64]collaboration.Access // userID -> access
	members []uint64
}

func (f *fakeCollab) ResolveAccess(ctx context.Context, ref domain.EntityRef, userID uint64) (collaboration.Access, error) {
	return f.access[userID], nil
}

func (f *fakeCollab) ListMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error) {
	return f.members, nil
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, recipientID uint64, input notification.Input) (*domain.Notification, error) {
	args := m.Called(ctx, recipientID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotifier) NotifyBulk(ctx context.Context, recipientIDs []uint64, input notification.Input) {
	m.Called(ctx, recipientIDs, input)
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*apiError.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	return apiErr.Status
}

func newTestTaskService(collab *fakeCollab) (Service, *MockRepository, *MockNotifier) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	svc := NewService(repo, collab, notifier, redis.NewCache(nil), "https://app.example.com")
	return svc, repo, notifier
}

func ownerAccess() collaboration.Access {
	return collaboration.Access{CanAccess: true, Role: domain.RoleOwner, IsOwner: true}
}

func roleAccess(role string) collaboration.Access {
	return collaboration.Access{CanAccess: true, Role: role}
}

func TestGetTask_StrangerForbidden(t *testing.T) {
	svc, _, _ := newTestTaskService(&fakeCollab{access: map[uint64]collaboration.Access{}})

	_, err := svc.GetTask(context.Background(), 10, 9)

	assert.Equal(t, 403, apiStatus(t, err))
}

func TestGetTask_CollaboratorSeesRole(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{
		2: roleAccess(domain.RoleViewer),
	}}
	svc, repo, _ := newTestTaskService(collab)

	repo.On("FindByID", mock.Anything, uint64(10)).
		Return(&domain.Task{ID: 10, Title: "Launch plan", UserID: 1}, nil)

	resp, err := svc.GetTask(context.Background(), 10, 2)

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, resp.Role)
	assert.Equal(t, "Launch plan", resp.Task.Title)
}

func TestUpdateTask_EditorAllowed(t *testing.T) {
	collab := &fakeCollab{
		access:  map[uint64]collaboration.Access{2: roleAccess(domain.RoleEditor)},
		members: []uint64{1, 2},
	}
	svc, repo, notifier := newTestTaskService(collab)

	repo.On("FindByID", mock.Anything, uint64(10)).
		Return(&domain.Task{ID: 10, Title: "Launch plan", UserID: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyBulk", mock.Anything, []uint64{1}, mock.MatchedBy(func(input notification.Input) bool {
		return input.Type == notification.TypeEntityUpdated && input.SenderID == uint64(2)
	})).Return()

	title := "Launch plan v2"
	task, err := svc.UpdateTask(context.Background(), 10, 2, UpdateInput{Title: &title})

	assert.NoError(t, err)
	assert.Equal(t, "Launch plan v2", task.Title)
	notifier.AssertExpectations(t)
}

func TestUpdateTask_AssigneeForbidden(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{
		3: roleAccess(domain.RoleAssignee),
	}}
	svc, repo, _ := newTestTaskService(collab)

	title := "nope"
	_, err := svc.UpdateTask(context.Background(), 10, 3, UpdateInput{Title: &title})

	assert.Equal(t, 403, apiStatus(t, err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestToggleComplete_ViewerForbidden(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{
		4: roleAccess(domain.RoleViewer),
	}}
	svc, repo, _ := newTestTaskService(collab)

	_, err := svc.ToggleComplete(context.Background(), 10, 4)

	assert.Equal(t, 403, apiStatus(t, err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestToggleComplete_OwnerFansOut(t *testing.T) {
	collab := &fakeCollab{
		access:  map[uint64]collaboration.Access{1: ownerAccess()},
		members: []uint64{1, 2, 3},
	}
	svc, repo, notifier := newTestTaskService(collab)

	repo.On("FindByID", mock.Anything, uint64(10)).
		Return(&domain.Task{ID: 10, Title: "Launch plan", UserID: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyBulk", mock.Anything, []uint64{2, 3}, mock.MatchedBy(func(input notification.Input) bool {
		return input.Type == notification.TypeEntityCompleted
	})).Return()

	task, err := svc.ToggleComplete(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.True(t, task.Completed)
	notifier.AssertExpectations(t)
}

// Assignees can't complete directly, so their path to done is a review
// request addressed to the owner, urgent priority.
func TestRequestReview_AssigneeNotifiesOwner(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{
		3: roleAccess(domain.RoleAssignee),
	}}
	svc, repo, notifier := newTestTaskService(collab)

	repo.On("FindByID", mock.Anything, uint64(10)).
		Return(&domain.Task{ID: 10, Title: "Launch plan", UserID: 1}, nil)
	notifier.On("Notify", mock.Anything, uint64(1), mock.MatchedBy(func(input notification.Input) bool {
		return input.Type == notification.TypeReviewRequested && input.SenderID == uint64(3)
	})).Return(&domain.Notification{}, nil)

	err := svc.RequestReview(context.Background(), 10, 3, "please check the copy")

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestRequestReview_EditorRejected(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{
		2: roleAccess(domain.RoleEditor),
	}}
	svc, _, notifier := newTestTaskService(collab)

	err := svc.RequestReview(context.Background(), 10, 2, "")

	assert.Equal(t, 400, apiStatus(t, err))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteTask_EditorForbidden(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{
		2: roleAccess(domain.RoleEditor),
	}}
	svc, repo, _ := newTestTaskService(collab)

	err := svc.DeleteTask(context.Background(), 10, 2)

	assert.Equal(t, 403, apiStatus(t, err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// Membership is read before the row disappears; the actor is excluded from
// the fan-out.
func TestDeleteTask_OwnerNotifiesRemainingMembers(t *testing.T) {
	collab := &fakeCollab{
		access:  map[uint64]collaboration.Access{1: ownerAccess()},
		members: []uint64{1, 2, 3},
	}
	svc, repo, notifier := newTestTaskService(collab)

	repo.On("FindByID", mock.Anything, uint64(10)).
		Return(&domain.Task{ID: 10, Title: "Launch plan", UserID: 1}, nil)
	repo.On("Delete", mock.Anything, uint64(10)).Return(nil)
	notifier.On("NotifyBulk", mock.Anything, []uint64{2, 3}, mock.MatchedBy(func(input notification.Input) bool {
		return input.Type == notification.TypeEntityDeleted
	})).Return()

	err := svc.DeleteTask(context.Background(), 10, 1)

	assert.NoError(t, err)
	repo.AssertCalled(t, "Delete", mock.Anything, uint64(10))
	notifier.AssertExpectations(t)
}

func TestRestoreTask_OnlyOwner(t *testing.T) {
	collab := &fakeCollab{members: []uint64{1}}
	svc, repo, _ := newTestTaskService(collab)

	repo.On("FindDeletedByID", mock.Anything, uint64(10)).
		Return(&domain.Task{ID: 10, Title: "Launch plan", UserID: 1}, nil)

	_, err := svc.RestoreTask(context.Background(), 10, 2)

	assert.Equal(t, 403, apiStatus(t, err))
	repo.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
}

func TestCreateTask_EmptyTitle(t *testing.T) {
	svc, repo, _ := newTestTaskService(&fakeCollab{})

	err := svc.CreateTask(context.Background(), 1, &domain.Task{})

	assert.Equal(t, 400, apiStatus(t, err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTask_MissingTask(t *testing.T) {
	collab := &fakeCollab{access: map[uint64]collaboration.Access{1: ownerAccess()}}
	svc, repo, _ := newTestTaskService(collab)

	repo.On("FindByID", mock.Anything, uint64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetTask(context.Background(), 99, 1)

	assert.Equal(t, 404, apiStatus(t, err))
}
