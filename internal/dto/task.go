package dto

import (
	"time"

	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/services"
	"github.com/yukikurage/task-tracker/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Category    string              `json:"category"`
	DueDate     *time.Time          `json:"due_date"`
	Completed   bool                `json:"completed"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ActiveTaskDTO is an active task with its urgency decoration. Priority stays
// the stored value; DisplayPriority is what the list should show.
type ActiveTaskDTO struct {
	TaskDTO
	DisplayPriority models.TaskPriority `json:"display_priority"`
	IsUrgent        bool                `json:"is_urgent"`
	IsOverdue       bool                `json:"is_overdue"`
	IsUpcoming      bool                `json:"is_upcoming"`
	DaysLeft        *int                `json:"days_left"`
}

// DashboardResponse is the body of GET /
type DashboardResponse struct {
	User        *UserDTO        `json:"user"`
	Tasks       []ActiveTaskDTO `json:"tasks"`
	History     []TaskDTO       `json:"history"`
	Count       int             `json:"count"`
	ChartLabels []string        `json:"chart_labels"`
	ChartData   []int           `json:"chart_data"`
	Categories  []string        `json:"categories"`
}

// TaskHistoryResponse represents a paginated list of completed tasks
type TaskHistoryResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TaskDraftDTO is a suggested task that has not been saved
type TaskDraftDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"due_date,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Category:    task.Category,
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToActiveTaskDTO converts a decorated task
func ToActiveTaskDTO(t services.DecoratedTask) ActiveTaskDTO {
	return ActiveTaskDTO{
		TaskDTO:         ToTaskDTO(t.Task),
		DisplayPriority: t.Urgency.DisplayPriority,
		IsUrgent:        t.Urgency.IsUrgent,
		IsOverdue:       t.Urgency.IsOverdue,
		IsUpcoming:      t.Urgency.IsUpcoming,
		DaysLeft:        t.Urgency.DaysLeft,
	}
}

// ToDashboardResponse flattens a services.Dashboard for JSON. user may be nil.
func ToDashboardResponse(d *services.Dashboard, user *models.User) DashboardResponse {
	tasks := make([]ActiveTaskDTO, len(d.Active))
	for i, t := range d.Active {
		tasks[i] = ToActiveTaskDTO(t)
	}

	categories := d.Categories
	if categories == nil {
		categories = []string{}
	}

	resp := DashboardResponse{
		Tasks:       tasks,
		History:     ToTaskDTOs(d.History),
		Count:       len(tasks),
		ChartLabels: d.Analytics.Labels,
		ChartData:   d.Analytics.Counts,
		Categories:  categories,
	}
	if user != nil {
		u := ToUserDTO(*user)
		resp.User = &u
	}
	return resp
}

// ToTaskHistoryResponse converts a page of completed tasks
func ToTaskHistoryResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskHistoryResponse {
	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	return TaskHistoryResponse{
		Tasks: ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// ToTaskDraftDTOs converts suggested drafts
func ToTaskDraftDTOs(drafts []services.TaskDraft) []TaskDraftDTO {
	items := make([]TaskDraftDTO, len(drafts))
	for i, d := range drafts {
		items[i] = TaskDraftDTO{
			Title:       d.Title,
			Description: d.Description,
			Priority:    d.Priority,
			Category:    d.Category,
			DueDate:     d.DueDate,
		}
	}
	return items
}
