package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/events"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleTooLong           = errors.New("title is too long")
	ErrCategoryTooLong        = errors.New("category is too long")
	ErrInvalidBulkAction      = errors.New("bulk action must be complete or delete")
	ErrTooManyTaskIDs         = errors.New("too many task IDs in one bulk action")
	ErrSuggestTextRequired    = errors.New("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoValidTasks         = errors.New("no valid tasks could be suggested from the text")
)

type BulkAction string

const (
	BulkComplete BulkAction = "complete"
	BulkDelete   BulkAction = "delete"
)

// TaskService owns the task lifecycle rules: normalization on write,
// owner-scoped mutations, urgency decoration and completion analytics.
type TaskService struct {
	taskRepo  repository.TaskRepository
	publisher events.Publisher
	suggester TaskSuggester
	now       func() time.Time
}

// NewTaskService creates a new TaskService. publisher and suggester may be nil.
func NewTaskService(taskRepo repository.TaskRepository, publisher events.Publisher, suggester TaskSuggester) *TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TaskService{
		taskRepo:  taskRepo,
		publisher: publisher,
		suggester: suggester,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the wall clock (used for testing)
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// TaskInput carries raw form values for create and edit.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
	DueDate     string
}

// DecoratedTask is an active task together with its urgency decoration.
type DecoratedTask struct {
	Task    models.Task
	Urgency Urgency
}

// Histogram holds completion counts for consecutive days, oldest first.
type Histogram struct {
	Labels []string
	Days   []time.Time
	Counts []int
}

// Dashboard is everything the main page shows for one actor.
type Dashboard struct {
	Active     []DecoratedTask
	History    []models.Task
	Analytics  Histogram
	Categories []string
}

// CreateTask inserts a task owned by the actor.
func (s *TaskService) CreateTask(actor Actor, input TaskInput) (*models.Task, error) {
	if actor.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	title, category, err := validateTaskInput(input)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Priority:    NormalizePriority(input.Priority),
		Category:    category,
		DueDate:     ParseDueDate(input.DueDate),
		OwnerID:     actor.ownerID(),
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publish(events.NewEvent(events.TaskCreated, task.OwnerID, task.ID))
	return task, nil
}

// UpdateTask overwrites the editable fields of an active task. Tasks the actor
// does not own, and completed tasks, are returned unchanged.
func (s *TaskService) UpdateTask(actor Actor, taskID uint64, input TaskInput) (*models.Task, error) {
	if actor.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if !actor.owns(task) || task.Completed {
		return task, nil
	}

	title, category, err := validateTaskInput(input)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = input.Description
	task.Priority = NormalizePriority(input.Priority)
	task.Category = category
	task.DueDate = ParseDueDate(input.DueDate)

	updated, err := s.taskRepo.UpdateActive(task)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !updated {
		// Completed or deleted after it was read.
		return s.findTask(taskID)
	}

	s.publish(events.NewEvent(events.TaskUpdated, task.OwnerID, task.ID))
	return task, nil
}

// CompleteTask marks a task completed and records when. Completing a task
// twice, or a task the actor does not own, changes nothing.
func (s *TaskService) CompleteTask(actor Actor, taskID uint64) error {
	if actor.IsAnonymous() {
		return ErrAuthenticationRequired
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	if !actor.owns(task) || task.Completed {
		return nil
	}

	changed, err := s.taskRepo.CompleteOwned(actor.ownerID(), []uint64{task.ID}, s.now())
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	if len(changed) > 0 {
		s.publish(events.NewEvent(events.TaskCompleted, task.OwnerID, changed...))
	}
	return nil
}

// DeleteTask permanently removes a task owned by the actor.
func (s *TaskService) DeleteTask(actor Actor, taskID uint64) error {
	if actor.IsAnonymous() {
		return ErrAuthenticationRequired
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	if !actor.owns(task) {
		return nil
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish(events.NewEvent(events.TaskDeleted, task.OwnerID, task.ID))
	return nil
}

// BulkAction applies complete or delete to the actor's tasks among taskIDs.
// IDs that are unknown or owned by someone else are skipped. It returns how
// many tasks changed.
func (s *TaskService) BulkAction(actor Actor, taskIDs []uint64, action BulkAction) (int, error) {
	if actor.IsAnonymous() {
		return 0, ErrAuthenticationRequired
	}
	if action != BulkComplete && action != BulkDelete {
		return 0, ErrInvalidBulkAction
	}

	ids := uniqueUint64(taskIDs)
	if len(ids) > constants.MaxBulkTaskIDs {
		return 0, ErrTooManyTaskIDs
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		affected  []uint64
		err       error
		eventType events.EventType
	)
	switch action {
	case BulkComplete:
		affected, err = s.taskRepo.CompleteOwned(actor.ownerID(), ids, s.now())
		eventType = events.TaskCompleted
	case BulkDelete:
		affected, err = s.taskRepo.DeleteOwned(actor.ownerID(), ids)
		eventType = events.TaskDeleted
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply bulk %s: %w", action, err)
	}

	if len(affected) > 0 {
		s.publish(events.NewEvent(eventType, actor.ownerID(), affected...))
	}
	return len(affected), nil
}

// ClearHistory deletes every completed task of the actor.
func (s *TaskService) ClearHistory(actor Actor) (int64, error) {
	if actor.IsAnonymous() {
		return 0, ErrAuthenticationRequired
	}

	removed, err := s.taskRepo.DeleteCompleted(actor.ownerID())
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	if removed > 0 {
		event := events.NewEvent(events.HistoryCleared, actor.ownerID())
		event.Count = removed
		s.publish(event)
	}
	return removed, nil
}

// ListActive returns the actor's incomplete tasks decorated with urgency.
func (s *TaskService) ListActive(actor Actor) ([]DecoratedTask, error) {
	if actor.IsAnonymous() {
		return []DecoratedTask{}, nil
	}

	completed := false
	tasks, _, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID:   actor.ownerID(),
		Completed: &completed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list active tasks: %w", err)
	}

	now := s.now()
	decorated := make([]DecoratedTask, len(tasks))
	for i, task := range tasks {
		decorated[i] = DecoratedTask{Task: task, Urgency: ClassifyUrgency(task, now)}
	}
	return decorated, nil
}

// ListHistory returns the actor's completed tasks, most recently completed
// first. A page or pageSize of zero returns everything.
func (s *TaskService) ListHistory(actor Actor, page, pageSize int) ([]models.Task, int64, error) {
	if actor.IsAnonymous() {
		return []models.Task{}, 0, nil
	}

	completed := true
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID:          actor.ownerID(),
		Completed:        &completed,
		SortByCompletion: true,
		Page:             page,
		PageSize:         pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history: %w", err)
	}
	return tasks, total, nil
}

// CompletionHistogram counts the actor's completions for each of the last
// seven UTC calendar days, ending today. Without an actor every count is zero.
func (s *TaskService) CompletionHistogram(actor Actor) (Histogram, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(constants.HistogramDays - 1))

	h := Histogram{
		Labels: make([]string, constants.HistogramDays),
		Days:   make([]time.Time, constants.HistogramDays),
		Counts: make([]int, constants.HistogramDays),
	}
	for i := range h.Days {
		day := start.AddDate(0, 0, i)
		h.Days[i] = day
		h.Labels[i] = day.Format("Mon")
	}

	if actor.IsAnonymous() {
		return h, nil
	}

	stamps, err := s.taskRepo.CompletedSince(actor.ownerID(), start)
	if err != nil {
		return h, fmt.Errorf("failed to load completions: %w", err)
	}

	for _, ts := range stamps {
		ts = ts.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		idx := int(day.Sub(start).Hours() / 24)
		if idx >= 0 && idx < constants.HistogramDays {
			h.Counts[idx]++
		}
	}
	return h, nil
}

// CategorySuggestions lists the distinct categories the actor has used.
func (s *TaskService) CategorySuggestions(actor Actor) ([]string, error) {
	if actor.IsAnonymous() {
		return []string{}, nil
	}

	categories, err := s.taskRepo.DistinctCategories(actor.ownerID())
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Dashboard gathers the active list, history, analytics and category
// suggestions in one call.
func (s *TaskService) Dashboard(actor Actor) (*Dashboard, error) {
	active, err := s.ListActive(actor)
	if err != nil {
		return nil, err
	}

	history, _, err := s.ListHistory(actor, 0, 0)
	if err != nil {
		return nil, err
	}

	analytics, err := s.CompletionHistogram(actor)
	if err != nil {
		return nil, err
	}

	categories, err := s.CategorySuggestions(actor)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Active:     active,
		History:    history,
		Analytics:  analytics,
		Categories: categories,
	}, nil
}

// SuggestTasks asks the configured suggester for drafts and normalizes them
// the same way a submitted form would be. Nothing is saved.
func (s *TaskService) SuggestTasks(ctx context.Context, actor Actor, text string) ([]TaskDraft, error) {
	if actor.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestTextRequired
	}

	drafts, err := s.suggester.SuggestTasks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}

	valid := make([]TaskDraft, 0, len(drafts))
	for _, d := range drafts {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			continue
		}

		draft := TaskDraft{
			Title:       title,
			Description: strings.TrimSpace(d.Description),
			Priority:    string(NormalizePriority(d.Priority)),
			Category:    NormalizeCategory(d.Category),
		}
		if due := ParseDueDate(d.DueDate); due != nil {
			draft.DueDate = due.Format(time.RFC3339)
		}

		valid = append(valid, draft)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}
	return valid, nil
}

// validateTaskInput returns the trimmed title and normalized category.
// Lengths are counted in characters, as the varchar columns count them.
func validateTaskInput(input TaskInput) (string, string, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", "", ErrTitleTooLong
	}

	category := NormalizeCategory(input.Category)
	if utf8.RuneCountInString(category) > constants.MaxCategoryLength {
		return "", "", ErrCategoryTooLong
	}
	return title, category, nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// publish runs after the change has committed; a delivery failure is logged
// and does not fail the request.
func (s *TaskService) publish(event events.Event) {
	if err := s.publisher.Publish(event); err != nil {
		log.Printf("Failed to publish %s event: %v", event.Type, err)
	}
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
