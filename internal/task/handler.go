package task

import (
	"net/http"
	"strconv"
	"time"

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

func taskIDFromPath(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("Invalid task id", err)
	}
	return id, nil
}

type CreateRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description *string    `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID := c.GetUint64("user_id")

	task := &domain.Task{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.DueDate,
	}
	if form.Category != "" {
		task.Category = form.Category
	}
	if form.Priority != "" {
		task.Priority = form.Priority
	}

	if err := h.service.CreateTask(c.Request.Context(), userID, task); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *Handler) Show(c *gin.Context) {
	taskID, err := taskIDFromPath(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID := c.GetUint64("user_id")

	result, err := h.service.GetTask(c.Request.Context(), taskID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type UpdateRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) Update(c *gin.Context) {
	taskID, err := taskIDFromPath(c)
	if err != nil {
		c.Error(err)
		return
	}

	var form UpdateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID := c.GetUint64("user_id")

	task, err := h.service.UpdateTask(c.Request.Context(), taskID, userID, UpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Status:      form.Status,
		Priority:    form.Priority,
		DueDate:     form.DueDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) ToggleComplete(c *gin.Context) {
	taskID, err := taskIDFromPath(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID := c.GetUint64("user_id")

	task, err := h.service.ToggleComplete(c.Request.Context(), taskID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

type ReviewRequest struct {
	Note string `json:"note" binding:"max=500"`
}

func (h *Handler) RequestReview(c *gin.Context) {
	taskID, err := taskIDFromPath(c)
	if err != nil {
		c.Error(err)
		return
	}

	var form ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&form); err != nil {
			c.Error(errors.NewValidationError(err))
			return
		}
	}

	userID := c.GetUint64("user_id")

	if err := h.service.RequestReview(c.Request.Context(), taskID, userID, form.Note); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Delete(c *gin.Context) {
	taskID, err := taskIDFromPath(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID := c.GetUint64("user_id")

	if err := h.service.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Restore(c *gin.Context) {
	taskID, err := taskIDFromPath(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID := c.GetUint64("user_id")

	task, err := h.service.RestoreTask(c.Request.Context(), taskID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) ListOwn(c *gin.Context) {
	userID := c.GetUint64("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListOwnTasks(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListShared(c *gin.Context) {
	userID := c.GetUint64("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	rows, meta, err := h.service.ListSharedTasks(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": meta})
}
