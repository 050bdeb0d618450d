package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/models/user"
	"github.com/awakra/to-do-list/internal/service"
)

const DateLayout = "2006-01-02"

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SigninRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
	Remember        bool   `json:"remember"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type NewPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type CreateTaskRequest struct {
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// UpdateTaskRequest: nil поле не меняется, пустой due_date снимает дедлайн
type UpdateTaskRequest struct {
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// ParseDueDate принимает дату YYYY-MM-DD или RFC 3339
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("ожидается YYYY-MM-DD или RFC 3339: %q", value)
	}
	return t.UTC(), nil
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Tags        []string   `json:"tags"`
	Priority    string     `json:"priority"`
	IsOverdue   bool       `json:"is_overdue"`
}

func FromTask(t *task.Task) TaskResponse {
	tags := t.TagList()
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		Tags:        tags,
		Priority:    string(t.Priority),
		IsOverdue:   !t.IsComplete() && t.DueDate != nil && t.DueDate.Before(time.Now()),
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type EventProps struct {
	Status   string `json:"status"`
	Tags     string `json:"tags"`
	Priority string `json:"priority"`
}

type EventResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Start         string     `json:"start"`
	AllDay        bool       `json:"allDay"`
	URL           string     `json:"url"`
	Color         string     `json:"color"`
	ExtendedProps EventProps `json:"extendedProps"`
}

func FromEvents(events []service.Event) []EventResponse {
	result := make([]EventResponse, len(events))
	for i, e := range events {
		result[i] = EventResponse{
			ID:     e.ID,
			Title:  e.Title,
			Start:  e.Start,
			AllDay: e.AllDay,
			URL:    e.URL,
			Color:  e.Color,
			ExtendedProps: EventProps{
				Status:   string(e.Status),
				Tags:     e.Tags,
				Priority: string(e.Priority),
			},
		}
	}
	return result
}

type MonthCountResponse struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type CompletedResponse struct {
	Tasks   []TaskResponse       `json:"tasks"`
	Monthly map[string]int       `json:"monthly"`
	Months  []MonthCountResponse `json:"months"`
	Total   int                  `json:"total"`
}

func FromHistory(h *service.CompletedHistory) CompletedResponse {
	months := make([]MonthCountResponse, len(h.Months))
	for i, m := range h.Months {
		months[i] = MonthCountResponse{Month: m.Month, Count: m.Count}
	}
	return CompletedResponse{
		Tasks:   FromTaskList(h.Tasks),
		Monthly: h.Monthly,
		Months:  months,
		Total:   h.Total,
	}
}
