package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/dto"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/middleware"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/services"
	"github.com/yukikurage/task-tracker/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	authService *services.AuthService
}

func NewTaskHandler(taskService *services.TaskService, authService *services.AuthService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		authService: authService,
	}
}

// taskForm is shared by create and edit. Both form posts and JSON bodies bind.
type taskForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Priority    string `form:"priority" json:"priority"`
	Category    string `form:"category" json:"category"`
	DueDate     string `form:"due_date" json:"due_date"`
}

func (f taskForm) input() services.TaskInput {
	return services.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Category:    f.Category,
		DueDate:     f.DueDate,
	}
}

// Index returns the dashboard: active tasks, history, chart data and
// category suggestions for the current actor.
func (h *TaskHandler) Index(c *gin.Context) {
	actor := middleware.GetActor(c)

	dashboard, err := h.taskService.Dashboard(actor)
	if err != nil {
		log.Printf("Failed to load dashboard: %v", err)
		apierrors.InternalError(c, "Failed to load tasks")
		return
	}

	var user *models.User
	if userID, ok := actor.UserID(); ok {
		user, err = h.authService.GetUser(userID)
		if err != nil && !errors.Is(err, services.ErrUserNotFound) {
			log.Printf("Failed to load user %d: %v", userID, err)
			apierrors.InternalError(c, "Failed to load user")
			return
		}
	}

	c.JSON(http.StatusOK, dto.ToDashboardResponse(dashboard, user))
}

// Create adds a task and redirects back to the dashboard
func (h *TaskHandler) Create(c *gin.Context) {
	var form taskForm
	if err := c.ShouldBind(&form); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.taskService.CreateTask(middleware.GetActor(c), form.input()); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Edit replaces the editable fields of a task
func (h *TaskHandler) Edit(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var form taskForm
	if err := c.ShouldBind(&form); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.taskService.UpdateTask(middleware.GetActor(c), taskID, form.input()); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Complete marks a task done
func (h *TaskHandler) Complete(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.CompleteTask(middleware.GetActor(c), taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Delete permanently removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(middleware.GetActor(c), taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// ClearHistory deletes every completed task of the actor
func (h *TaskHandler) ClearHistory(c *gin.Context) {
	if _, err := h.taskService.ClearHistory(middleware.GetActor(c)); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// BulkAction completes or deletes the selected tasks
func (h *TaskHandler) BulkAction(c *gin.Context) {
	type BulkActionRequest struct {
		TaskIDs []uint64 `form:"task_ids" json:"task_ids"`
		Action  string   `form:"action" json:"action" binding:"required"`
	}

	var req BulkActionRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.taskService.BulkAction(middleware.GetActor(c), req.TaskIDs, services.BulkAction(req.Action)); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// History returns one page of completed tasks, most recent first
func (h *TaskHandler) History(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListHistory(middleware.GetActor(c), params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskHistoryResponse(tasks, params, total))
}

// Categories lists the categories the actor has already used
func (h *TaskHandler) Categories(c *gin.Context) {
	categories, err := h.taskService.CategorySuggestions(middleware.GetActor(c))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Suggest drafts tasks from free text. Drafts are returned, not saved.
func (h *TaskHandler) Suggest(c *gin.Context) {
	type SuggestRequest struct {
		Text string `form:"text" json:"text" binding:"required"`
	}

	var req SuggestRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.SuggestTasks(c.Request.Context(), middleware.GetActor(c), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDraftDTOs(drafts),
	})
}

// parseTaskID reads the :id path parameter. A malformed id cannot name any
// task, so it is reported as not found.
func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.NotFound(c, "Task not found")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.ValidationFailed(c, err.Error(), "title")
	case errors.Is(err, services.ErrTitleTooLong):
		apierrors.ValidationFailed(c, fmt.Sprintf("Title must be at most %d characters", constants.MaxTitleLength), "title")
	case errors.Is(err, services.ErrCategoryTooLong):
		apierrors.ValidationFailed(c, fmt.Sprintf("Category must be at most %d characters", constants.MaxCategoryLength), "category")
	case errors.Is(err, services.ErrInvalidBulkAction):
		apierrors.ValidationFailed(c, err.Error(), "action")
	case errors.Is(err, services.ErrTooManyTaskIDs):
		apierrors.ValidationFailed(c, fmt.Sprintf("At most %d tasks per bulk action", constants.MaxBulkTaskIDs), "task_ids")
	case errors.Is(err, services.ErrSuggestTextRequired):
		apierrors.ValidationFailed(c, err.Error(), "text")
	case errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	default:
		log.Printf("Task request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
