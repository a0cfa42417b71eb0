package collaboration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskhive/internal/domain"
	"taskhive/internal/errors"
	"taskhive/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ResolveAccess(ctx context.Context, ref domain.EntityRef, userID uint64) (Access, error) {
	args := m.Called(ctx, ref, userID)
	return args.Get(0).(Access), args.Error(1)
}

func (m *MockService) ListMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *MockService) ListCollaborators(ctx context.Context, ref domain.EntityRef, requesterID uint64) ([]CollaboratorDTO, error) {
	args := m.Called(ctx, ref, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CollaboratorDTO), args.Error(1)
}

func (m *MockService) Invite(ctx context.Context, requesterID uint64, ref domain.EntityRef, inviteeEmail, role, message string) (*domain.Collaboration, error) {
	args := m.Called(ctx, requesterID, ref, inviteeEmail, role, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collaboration), args.Error(1)
}

func (m *MockService) Accept(ctx context.Context, token string, userID *uint64) (*domain.Collaboration, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collaboration), args.Error(1)
}

func (m *MockService) Decline(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockService) Cancel(ctx context.Context, requesterID, invitationID uint64) error {
	args := m.Called(ctx, requesterID, invitationID)
	return args.Error(0)
}

func (m *MockService) UpdateRole(ctx context.Context, requesterID, recordID uint64, newRole string) (*domain.Collaboration, error) {
	args := m.Called(ctx, requesterID, recordID, newRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collaboration), args.Error(1)
}

func (m *MockService) Remove(ctx context.Context, requesterID, recordID uint64) error {
	args := m.Called(ctx, requesterID, recordID)
	return args.Error(0)
}

func (m *MockService) ClaimInvitations(ctx context.Context, userID uint64, verifiedEmail string) {
	m.Called(ctx, userID, verifiedEmail)
}

func (m *MockService) CreateShareLink(ctx context.Context, requesterID uint64, ref domain.EntityRef, role string) (*domain.ShareLink, error) {
	args := m.Called(ctx, requesterID, ref, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareLink), args.Error(1)
}

func (m *MockService) RedeemShareLink(ctx context.Context, token string, userID uint64) (*domain.Collaboration, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collaboration), args.Error(1)
}

// authAs fakes the auth middleware for handler tests.
func authAs(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newTestRouter(service Service, userID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(service)

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	router.POST("/tasks/:id/collaborators", authAs(userID), handler.InviteFor(domain.EntityTask))
	router.GET("/tasks/:id/collaborators", authAs(userID), handler.ListCollaboratorsFor(domain.EntityTask))
	router.POST("/invitations/:token/accept", handler.Accept)
	router.POST("/invitations/:token/decline", handler.Decline)
	router.DELETE("/invitations/:id", authAs(userID), handler.Cancel)
	router.PUT("/collaborations/:id/role", authAs(userID), handler.UpdateRole)
	router.DELETE("/collaborations/:id", authAs(userID), handler.Remove)

	return router
}

func TestInviteHandler_Success(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	service.On("Invite", mock.Anything, uint64(1), taskRef, "bob@x.com", "editor", "hi").
		Return(&domain.Collaboration{ID: 5, Status: domain.CollabPending}, nil)

	body := `{"email": "bob@x.com", "role": "editor", "message": "hi"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks/10/collaborators", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	service.AssertExpectations(t)
}

func TestInviteHandler_RejectsOwnerRole(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	body := `{"email": "bob@x.com", "role": "owner"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks/10/collaborators", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "Invite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInviteHandler_RejectsBadEmail(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	body := `{"email": "not-an-email", "role": "editor"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks/10/collaborators", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInviteHandler_ConflictPassesThrough(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	service.On("Invite", mock.Anything, uint64(1), taskRef, "bob@x.com", "editor", "").
		Return(nil, errors.Conflict("User already invited or collaborating", nil))

	body := `{"email": "bob@x.com", "role": "editor"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks/10/collaborators", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User already invited or collaborating", resp["error"])
}

func TestAcceptHandler_Anonymous(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 0)

	service.On("Accept", mock.Anything, "tok", (*uint64)(nil)).
		Return(&domain.Collaboration{ID: 5, Status: domain.CollabActive}, nil)

	req := httptest.NewRequest(http.MethodPost, "/invitations/tok/accept", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestAcceptHandler_ExpiredMapsTo410(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 0)

	service.On("Accept", mock.Anything, "tok", (*uint64)(nil)).
		Return(nil, errors.Expired("Invitation has expired", nil))

	req := httptest.NewRequest(http.MethodPost, "/invitations/tok/accept", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGone, w.Code)
}

func TestDeclineHandler_NoContent(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 0)

	service.On("Decline", mock.Anything, "tok").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/invitations/tok/decline", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCancelHandler_Forbidden(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 2)

	service.On("Cancel", mock.Anything, uint64(2), uint64(5)).
		Return(errors.Forbidden("Only owner can cancel an invitation", nil))

	req := httptest.NewRequest(http.MethodDelete, "/invitations/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateRoleHandler_Success(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	service.On("UpdateRole", mock.Anything, uint64(1), uint64(5), "viewer").
		Return(&domain.Collaboration{ID: 5, Role: domain.RoleViewer, Status: domain.CollabActive}, nil)

	body := `{"role": "viewer"}`
	req := httptest.NewRequest(http.MethodPut, "/collaborations/5/role", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestRemoveHandler_NoContent(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	service.On("Remove", mock.Anything, uint64(1), uint64(5)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/collaborations/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListCollaboratorsHandler_BadID(t *testing.T) {
	service := new(MockService)
	router := newTestRouter(service, 1)

	req := httptest.NewRequest(http.MethodGet, "/tasks/abc/collaborators", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
