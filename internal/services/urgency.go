package services

import (
	"math"
	"time"

	"github.com/yukikurage/task-tracker/internal/models"
)

const upcomingWindow = 24 * time.Hour

// Urgency is the read-time decoration of an active task. It is derived from
// the due date and the current time and is never persisted.
type Urgency struct {
	IsUrgent        bool
	IsOverdue       bool
	IsUpcoming      bool
	DaysLeft        *int
	DisplayPriority models.TaskPriority
}

// ClassifyUrgency decorates a task relative to now. Overdue tasks and tasks
// due within 24 hours are displayed as High priority; the stored priority is
// left untouched.
func ClassifyUrgency(task models.Task, now time.Time) Urgency {
	u := Urgency{DisplayPriority: task.Priority}
	if task.Completed || task.DueDate == nil {
		return u
	}

	delta := task.DueDate.Sub(now)
	days := int(math.Floor(delta.Hours() / 24))
	u.DaysLeft = &days

	switch {
	case delta < 0:
		u.IsOverdue = true
	case delta < upcomingWindow:
		u.IsUpcoming = true
	}

	if u.IsOverdue || u.IsUpcoming {
		u.IsUrgent = true
		u.DisplayPriority = models.PriorityHigh
	}

	return u
}
