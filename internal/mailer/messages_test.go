package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/models/user"

	"github.com/stretchr/testify/assert"
)

// TestReminderMessage тестирует текст напоминания
func TestReminderMessage(t *testing.T) {
	due := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	u := &user.User{Username: "alice", Email: "alice@example.com"}

	tests := []struct {
		name     string
		task     *task.Task
		contains []string
	}{
		{
			name: "success - with tags",
			task: &task.Task{
				Description: "Write report",
				DueDate:     &due,
				Priority:    task.PriorityHigh,
				Status:      task.StatusPending,
				Tags:        "work",
			},
			contains: []string{
				"Hello alice,",
				"\"Write report\"\nis due on 2024-03-15.",
				"Priority: High",
				"Status: Pending",
				"Tags: work",
				"http://localhost/dashboard",
			},
		},
		{
			name: "success - without tags",
			task: &task.Task{
				Description: "Call mom",
				DueDate:     &due,
				Priority:    task.PriorityLow,
				Status:      task.StatusPending,
			},
			contains: []string{"Tags: None", "Priority: Low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ReminderMessage(u, tt.task, "http://localhost/dashboard")

			assert.Equal(t, "alice@example.com", msg.To)
			assert.Contains(t, msg.Subject, tt.task.Description)
			for _, part := range tt.contains {
				assert.Contains(t, msg.Body, part)
			}
		})
	}
}

func TestResetPasswordMessage(t *testing.T) {
	u := &user.User{Username: "bob", Email: "bob@example.com"}

	msg := ResetPasswordMessage(u, "http://localhost/reset_password/abc", 30*time.Minute)

	assert.Equal(t, "bob@example.com", msg.To)
	assert.Contains(t, msg.Body, "http://localhost/reset_password/abc")
	assert.Contains(t, msg.Body, "30 minutes")
}

func TestLogSender(t *testing.T) {
	var sender LogSender

	assert.NoError(t, sender.Send(context.Background(), Message{To: "a@b.c", Subject: "s"}))
	assert.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipient)
}
