package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/models/user"
)

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ReminderMessage(u *user.User, t *task.Task, dashboardURL string) Message {
	due := "N/A"
	if t.DueDate != nil {
		due = t.DueDate.UTC().Format("2006-01-02")
	}
	tags := t.Tags
	if tags == "" {
		tags = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", u.Username)
	b.WriteString("This is a friendly reminder that your to-do item:\n")
	fmt.Fprintf(&b, "%q\nis due on %s.\n\n", t.Description, due)
	fmt.Fprintf(&b, "Priority: %s\n", capitalize(string(t.Priority)))
	fmt.Fprintf(&b, "Status: %s\n", capitalize(string(t.Status)))
	fmt.Fprintf(&b, "Tags: %s\n\n", tags)
	b.WriteString("Don't forget to complete it!\n\n")
	fmt.Fprintf(&b, "You can view and manage your tasks here:\n%s\n\n", dashboardURL)
	b.WriteString("Best regards,\nYour To-do App Team\n")

	return Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Reminder: Your To-do %q is due soon!", t.Description),
		Body:    b.String(),
	}
}

func ResetPasswordMessage(u *user.User, resetURL string, ttl time.Duration) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", u.Username)
	b.WriteString("To reset your password, open the following link:\n")
	fmt.Fprintf(&b, "%s\n\n", resetURL)
	fmt.Fprintf(&b, "The link is valid for %d minutes.\n", int(ttl.Minutes()))
	b.WriteString("If you did not request a password reset, simply ignore this email.\n\n")
	b.WriteString("Best regards,\nYour To-do App Team\n")

	return Message{
		To:      u.Email,
		Subject: "Password Reset Request",
		Body:    b.String(),
	}
}
