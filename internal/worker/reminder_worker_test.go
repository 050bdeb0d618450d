package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/awakra/to-do-list/internal/mailer"
	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/models/user"
	taskmem "github.com/awakra/to-do-list/internal/repository/task/inmemory"
	usermem "github.com/awakra/to-do-list/internal/repository/user/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMailer - мок отправителя писем
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fixture struct {
	tasks  *taskmem.TaskStorage
	users  *usermem.UserStorage
	mailer *MockMailer
	worker *ReminderWorker
	now    time.Time
}

func newFixture() *fixture {
	now := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	f := &fixture{
		tasks:  taskmem.NewTaskStorage(),
		users:  usermem.NewUserStorage(),
		mailer: new(MockMailer),
		now:    now,
	}
	f.worker = NewReminderWorker(f.tasks, f.users, f.mailer, 8, 0, "http://localhost:8080/dashboard").
		WithClock(func() time.Time { return now })
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string) *user.User {
	u := &user.User{Username: name, Email: email, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addTask(t *testing.T, owner int64, description string, due time.Duration, options ...task.TaskOption) *task.Task {
	opts := append([]task.TaskOption{task.WithDueDate(f.now.Add(due))}, options...)
	tk := task.New(owner, description, opts...)
	require.NoError(t, f.tasks.Create(context.Background(), tk))
	return tk
}

// TestReminderWorker_Check тестирует выбор задач по окну в 24 часа
func TestReminderWorker_Check(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", "alice@example.com")

	f.addTask(t, alice.ID, "in two hours", 2*time.Hour)
	f.addTask(t, alice.ID, "in 36 hours", 36*time.Hour)
	f.addTask(t, alice.ID, "an hour ago", -time.Hour)
	f.addTask(t, alice.ID, "done soon", 3*time.Hour, task.WithStatus(task.StatusComplete))
	require.NoError(t, f.tasks.Create(context.Background(), task.New(alice.ID, "no due date")))

	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "alice@example.com"
	})).Return(nil).Once()

	res := f.worker.Check(context.Background())

	assert.Equal(t, Result{Found: 1, Sent: 1}, res)
	f.mailer.AssertExpectations(t)
	msg := f.mailer.Calls[0].Arguments.Get(1).(mailer.Message)
	assert.Contains(t, msg.Subject, "in two hours")
}

// TestReminderWorker_Check_Isolation тестирует, что ошибка одного письма не мешает остальным
func TestReminderWorker_Check_Isolation(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", "alice@example.com")
	bob := f.addUser(t, "bob", "bob@example.com")

	f.addTask(t, alice.ID, "alice first", time.Hour)
	f.addTask(t, bob.ID, "bob second", 2*time.Hour)
	f.addTask(t, 999, "orphan", 3*time.Hour)

	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "alice@example.com"
	})).Return(errors.New("smtp timeout")).Once()
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "bob@example.com"
	})).Return(nil).Once()

	res := f.worker.Check(context.Background())

	assert.Equal(t, Result{Found: 3, Sent: 1, Skipped: 1, Failed: 1}, res)
	f.mailer.AssertExpectations(t)
}

// TestReminderWorker_Check_Repeat тестирует повторную отправку при повторном запуске
func TestReminderWorker_Check_Repeat(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", "alice@example.com")
	f.addTask(t, alice.ID, "due soon", time.Hour)

	f.mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	f.worker.Check(context.Background())
	f.worker.Check(context.Background())

	f.mailer.AssertNumberOfCalls(t, "Send", 2)
}

func TestReminderWorker_Check_Cancelled(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", "alice@example.com")
	f.addTask(t, alice.ID, "due soon", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.worker.Check(ctx)

	assert.Equal(t, 1, res.Found)
	assert.Zero(t, res.Sent)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

// TestReminderWorker_NextRun тестирует расчёт времени следующего запуска
func TestReminderWorker_NextRun(t *testing.T) {
	w := NewReminderWorker(nil, nil, nil, 8, 30, "")

	tests := []struct {
		name     string
		after    time.Time
		expected time.Time
	}{
		{
			name:     "later today",
			after:    time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "exactly at run time moves to tomorrow",
			after:    time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC),
			expected: time.Date(2024, 4, 2, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "end of month",
			after:    time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "non-UTC input",
			after:    time.Date(2024, 4, 1, 10, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
			expected: time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.NextRun(tt.after))
		})
	}
}

func TestReminderWorker_Start_StopsOnCancel(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
