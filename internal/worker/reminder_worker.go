package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/mailer"
	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/repository"
	"github.com/awakra/to-do-list/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const reminderWindow = 24 * time.Hour

var (
	remindersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todo_reminders_total",
		Help: "Напоминания о дедлайнах по результату отправки",
	}, []string{"result"})

	reminderScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "todo_reminder_scans_total",
		Help: "Количество запусков рассылки напоминаний",
	})
)

// Result итог одного прохода рассылки
type Result struct {
	Found   int
	Sent    int
	Skipped int
	Failed  int
}

type ReminderWorker struct {
	tasks        service.TaskRepository
	users        service.UserRepository
	mailer       service.Mailer
	hour         int
	minute       int
	dashboardURL string
	now          func() time.Time
}

func NewReminderWorker(tasks service.TaskRepository, users service.UserRepository, m service.Mailer,
	hour, minute int, dashboardURL string) *ReminderWorker {
	return &ReminderWorker{
		tasks:        tasks,
		users:        users,
		mailer:       m,
		hour:         hour,
		minute:       minute,
		dashboardURL: dashboardURL,
		now:          time.Now,
	}
}

func (w *ReminderWorker) WithClock(now func() time.Time) *ReminderWorker {
	w.now = now
	return w
}

// NextRun ближайший момент HH:MM по UTC строго после after
func (w *ReminderWorker) NextRun(after time.Time) time.Time {
	after = after.UTC()
	next := time.Date(after.Year(), after.Month(), after.Day(), w.hour, w.minute, 0, 0, time.UTC)
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *ReminderWorker) Start(ctx context.Context) {
	for {
		next := w.NextRun(w.now())
		logger.Info("Worker: Следующая рассылка напоминаний", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(w.now()))
		select {
		case <-timer.C:
			logger.Info("Worker: Фоновая рассылка напоминаний", zap.Time("started_at", w.now()))
			w.Check(ctx)
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Worker: Фоновая рассылка останавливается")
			return
		}
	}
}

// Check отправляет напоминания по задачам pending с дедлайном в [now, now+24h).
// Отметки об отправке нет: повторный запуск пришлёт письма снова.
func (w *ReminderWorker) Check(ctx context.Context) Result {
	began := time.Now()
	start := w.now().UTC()
	reminderScans.Inc()

	var res Result
	tasks, err := w.tasks.GetPendingDueBetween(ctx, start, start.Add(reminderWindow))
	if err != nil {
		logger.Warn("Worker: ошибка получения задач", zap.Error(err))
		return res
	}
	res.Found = len(tasks)

	if len(tasks) == 0 {
		logger.Info("Worker: Нет задач с дедлайном в ближайшие 24 часа")
		return res
	}

	for _, t := range tasks {
		// остановка между письмами, начатое письмо досылается
		if ctx.Err() != nil {
			logger.Info("Worker: Рассылка прервана", zap.Int("remaining", len(tasks)-res.Sent-res.Skipped-res.Failed))
			break
		}

		err := w.remind(context.WithoutCancel(ctx), t)
		switch {
		case errors.Is(err, errNoRecipient):
			res.Skipped++
			remindersTotal.WithLabelValues("skipped").Inc()
			logger.Warn("Worker: Нет получателя для напоминания", zap.Int64("task_id", t.ID))
		case err != nil:
			res.Failed++
			remindersTotal.WithLabelValues("failed").Inc()
			logger.Warn("Worker: Не удалось отправить напоминание", zap.Int64("task_id", t.ID), zap.Error(err))
		default:
			res.Sent++
			remindersTotal.WithLabelValues("sent").Inc()
		}
	}

	logger.Info(
		"Worker: Завершение рассылки напоминаний",
		zap.Duration("ms", time.Since(began)),
		zap.Int("found", res.Found),
		zap.Int("sent", res.Sent),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res
}

var errNoRecipient = errors.New("у владельца задачи нет email")

func (w *ReminderWorker) remind(ctx context.Context, t *task.Task) error {
	u, err := w.users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNoRecipient
		}
		return fmt.Errorf("получение пользователя: %w", err)
	}
	if u.Email == "" {
		return errNoRecipient
	}

	if err := w.mailer.Send(ctx, mailer.ReminderMessage(u, t, w.dashboardURL)); err != nil {
		return fmt.Errorf("отправка напоминания: %w", err)
	}
	logger.Info("Worker: Напоминание отправлено", zap.Int64("task_id", t.ID), zap.Int64("user_id", u.ID))
	return nil
}
