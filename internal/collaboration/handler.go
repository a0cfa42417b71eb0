package collaboration

import (
	"net/http"
	"strconv"

	"taskhive/internal/domain"
	"taskhive/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func entityRefFromPath(c *gin.Context, entityType domain.EntityType) (domain.EntityRef, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return domain.EntityRef{}, errors.BadRequest("Invalid entity id", err)
	}
	return domain.EntityRef{Type: entityType, ID: id}, nil
}

type InviteRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Role    string `json:"role" binding:"required,oneof=editor assignee viewer"`
	Message string `json:"message" binding:"max=500"`
}

// InviteFor returns the invite handler for one entity kind. Tasks and
// vital tasks share everything but the path.
func (h *Handler) InviteFor(entityType domain.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := entityRefFromPath(c, entityType)
		if err != nil {
			c.Error(err)
			return
		}

		var form InviteRequest
		if err := c.ShouldBindJSON(&form); err != nil {
			c.Error(errors.NewValidationError(err))
			return
		}

		userID := c.GetUint64("user_id")

		collab, err := h.service.Invite(c.Request.Context(), userID, ref, form.Email, form.Role, form.Message)
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, collab)
	}
}

func (h *Handler) ListCollaboratorsFor(entityType domain.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := entityRefFromPath(c, entityType)
		if err != nil {
			c.Error(err)
			return
		}

		userID := c.GetUint64("user_id")

		collaborators, err := h.service.ListCollaborators(c.Request.Context(), ref, userID)
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": collaborators})
	}
}

// Accept runs with optional auth: an anonymous accept stays bound to the
// email and is claimed at first login.
func (h *Handler) Accept(c *gin.Context) {
	token := c.Param("token")

	var userID *uint64
	if id, exists := c.Get("user_id"); exists {
		uid := id.(uint64)
		userID = &uid
	}

	collab, err := h.service.Accept(c.Request.Context(), token, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, collab)
}

func (h *Handler) Decline(c *gin.Context) {
	token := c.Param("token")

	if err := h.service.Decline(c.Request.Context(), token); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Cancel(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid invitation id", err))
		return
	}

	userID := c.GetUint64("user_id")

	if err := h.service.Cancel(c.Request.Context(), userID, invitationID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=editor assignee viewer"`
}

func (h *Handler) UpdateRole(c *gin.Context) {
	recordID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid collaboration id", err))
		return
	}

	var form UpdateRoleRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID := c.GetUint64("user_id")

	collab, err := h.service.UpdateRole(c.Request.Context(), userID, recordID, form.Role)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, collab)
}

func (h *Handler) Remove(c *gin.Context) {
	recordID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid collaboration id", err))
		return
	}

	userID := c.GetUint64("user_id")

	if err := h.service.Remove(c.Request.Context(), userID, recordID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type ShareLinkRequest struct {
	Role string `json:"role" binding:"omitempty,oneof=editor assignee viewer"`
}

func (h *Handler) CreateShareLinkFor(entityType domain.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := entityRefFromPath(c, entityType)
		if err != nil {
			c.Error(err)
			return
		}

		// body is optional, empty means a viewer link
		var form ShareLinkRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&form); err != nil {
				c.Error(errors.NewValidationError(err))
				return
			}
		}

		userID := c.GetUint64("user_id")

		link, err := h.service.CreateShareLink(c.Request.Context(), userID, ref, form.Role)
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, link)
	}
}

// ShowAccessFor answers the internal permission question other services
// ask before trusting a request: what is this user to this entity.
func (h *Handler) ShowAccessFor(entityType domain.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := entityRefFromPath(c, entityType)
		if err != nil {
			c.Error(err)
			return
		}

		userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
		if err != nil {
			c.Error(errors.BadRequest("Invalid user id", err))
			return
		}

		access, err := h.service.ResolveAccess(c.Request.Context(), ref, userID)
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusOK, access)
	}
}

func (h *Handler) RedeemShareLink(c *gin.Context) {
	token := c.Param("token")
	userID := c.GetUint64("user_id")

	collab, err := h.service.RedeemShareLink(c.Request.Context(), token, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, collab)
}
