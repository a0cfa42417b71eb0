package notification

import (
	"net/http"
	"strconv"

	"taskhive/internal/domain"
	"taskhive/internal/errors"
	"taskhive/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	unreadOnly := c.Query("unread") == "true"

	page, pageSize := utils.GetPaginationParams(c)
	notifications, meta, err := h.service.ListNotifications(c.Request.Context(), userID, unreadOnly, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications, "meta": meta})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")

	count, err := h.service.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID := c.GetUint64("user_id")

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid notification id", err))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := c.GetUint64("user_id")

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetUint64("user_id")

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid notification id", err))
		return
	}

	if err := h.service.DeleteNotification(c.Request.Context(), userID, notificationID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256dh   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var form SubscribeRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	sub := &domain.PushSubscription{
		UserID:   userID,
		Endpoint: form.Endpoint,
		P256dh:   form.P256dh,
		Auth:     form.Auth,
	}

	if err := h.service.Subscribe(c.Request.Context(), sub); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	userID := c.GetUint64("user_id")

	subID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid subscription id", err))
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), userID, subID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
