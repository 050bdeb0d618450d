package task

import (
	"strings"
	"time"
)

const (
	MaxDescriptionLen = 200
	MaxTagsLen        = 255
)

type Task struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	Tags        string     `json:"tags,omitempty" db:"tags"`
	Priority    Priority   `json:"priority" db:"priority"`
}

type Status string
type Priority string

const StatusPending Status = "pending"
const StatusComplete Status = "complete"

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusComplete
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func (t *Task) IsComplete() bool {
	return t.Status == StatusComplete
}

// TagList разбивает строку тегов по запятым, пустые элементы отбрасываются
func (t *Task) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	parts := strings.Split(t.Tags, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

// New создаёт задачу со значениями по умолчанию и применяет опции
func New(owner int64, description string, options ...TaskOption) *Task {
	t := &Task{
		UserID:      owner,
		Description: description,
		Status:      StatusPending,
		Priority:    PriorityMedium,
	}
	Apply(t, options...)
	return t
}
