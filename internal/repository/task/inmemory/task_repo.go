package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/models/task"
	repo "github.com/awakra/to-do-list/internal/repository"
)

type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	ids     []int64
	nextID  int64
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
		now:     time.Now,
	}
}

// WithClock подменяет источник времени для created_at
func (s *TaskStorage) WithClock(now func() time.Time) *TaskStorage {
	s.now = now
	return s
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// наружу отдаются только копии, чтобы изменения вне Update не попадали в хранилище
func clone(t *task.Task) *task.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextID++
	taskToCreate.ID = s.nextID
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = s.now().UTC()
	}

	s.storage[taskToCreate.ID] = clone(taskToCreate)
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	updated := clone(taskToUpdate)
	// владелец и дата создания не меняются
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	s.storage[taskToUpdate.ID] = updated

	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(taskToGet), nil
}

// полное удаление
func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

func (s *TaskStorage) filter(match func(*task.Task) bool) []*task.Task {
	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if match(t) {
			res = append(res, clone(t))
		}
	}
	return res
}

func sortByCreatedDesc(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// незавершённые задачи владельца, новые сверху
func (s *TaskStorage) ListActive(ctx context.Context, owner int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := s.filter(func(t *task.Task) bool {
		return t.UserID == owner && t.Status != task.StatusComplete
	})
	sortByCreatedDesc(res)
	return res, nil
}

func (s *TaskStorage) ListCompleted(ctx context.Context, owner int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := s.filter(func(t *task.Task) bool {
		return t.UserID == owner && t.Status == task.StatusComplete
	})
	sortByCreatedDesc(res)
	return res, nil
}

// незавершённые задачи с дедлайном, ближайшие сверху
func (s *TaskStorage) ListScheduled(ctx context.Context, owner int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := s.filter(func(t *task.Task) bool {
		return t.UserID == owner && t.Status != task.StatusComplete && t.DueDate != nil
	})
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].DueDate.Before(*res[j].DueDate)
	})
	return res, nil
}

// задачи в статусе pending с дедлайном в полуинтервале [from, to)
func (s *TaskStorage) GetPendingDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := s.filter(func(t *task.Task) bool {
		return t.Status == task.StatusPending &&
			t.DueDate != nil &&
			!t.DueDate.Before(from) &&
			t.DueDate.Before(to)
	})
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].DueDate.Before(*res[j].DueDate)
	})
	return res, nil
}
