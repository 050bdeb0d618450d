package service

import (
	"fmt"

	"github.com/awakra/to-do-list/internal/models/task"
)

const (
	ColorHigh    = "#dc3545"
	ColorMedium  = "#ffc107"
	ColorLow     = "#0dcaf0"
	ColorDefault = "#0d6efd"
)

const calendarDateLayout = "2006-01-02"

type Event struct {
	ID       int64
	Title    string
	Start    string
	AllDay   bool
	URL      string
	Color    string
	Status   task.Status
	Tags     string
	Priority task.Priority
}

func PriorityColor(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return ColorHigh
	case task.PriorityMedium:
		return ColorMedium
	case task.PriorityLow:
		return ColorLow
	default:
		return ColorDefault
	}
}

// CalendarProjection пропускает задачи без дедлайна и выполненные
func CalendarProjection(tasks []*task.Task) []Event {
	events := make([]Event, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil || t.IsComplete() {
			continue
		}
		events = append(events, Event{
			ID:       t.ID,
			Title:    t.Description,
			Start:    t.DueDate.UTC().Format(calendarDateLayout),
			AllDay:   true,
			URL:      fmt.Sprintf("/todo/%d/update", t.ID),
			Color:    PriorityColor(t.Priority),
			Status:   t.Status,
			Tags:     t.Tags,
			Priority: t.Priority,
		})
	}
	return events
}
