package handlers

import (
	"net/http"
	"time"

	"github.com/awakra/to-do-list/internal/handlers/dto"
	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/service"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func badID(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warn("HTTP: Не удалось получить id",
		zap.Error(err),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
}

func dueDateOption(raw string) (task.TaskOption, error) {
	if raw == "" {
		return task.WithoutDueDate(), nil
	}
	due, err := dto.ParseDueDate(raw)
	if err != nil {
		return nil, service.NewValidationError("due_date", err.Error())
	}
	return task.WithDueDate(due), nil
}

// Dashboard GET /dashboard
func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.ListActive(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "list_active")
		return
	}

	logger.Info("HTTP_OUT: Активные задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

// CreateTask POST /todo/new
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	options := []task.TaskOption{
		task.WithTags(request.Tags),
		task.WithPriority(task.Priority(request.Priority)),
	}
	if request.DueDate != "" {
		opt, err := dueDateOption(request.DueDate)
		if err != nil {
			handleServiceError(w, r, err, "create_task")
			return
		}
		options = append(options, opt)
	}

	created, err := h.TaskService.CreateTask(r.Context(), userID, request.Description, options...)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created))
}

// GetTask GET /todo/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		badID(w, r, err)
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), id, userID)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

// UpdateTask POST /todo/{id}/update
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		badID(w, r, err)
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	var options []task.TaskOption
	if request.Description != nil {
		options = append(options, task.WithDescription(*request.Description))
	}
	if request.Tags != nil {
		options = append(options, task.WithTags(*request.Tags))
	}
	if request.Priority != nil {
		// пустая строка должна дойти до валидации, а не пропасть как nil-опция
		p := task.Priority(*request.Priority)
		options = append(options, func(t *task.Task) { t.Priority = p })
	}
	if request.DueDate != nil {
		opt, err := dueDateOption(*request.DueDate)
		if err != nil {
			handleServiceError(w, r, err, "update_task")
			return
		}
		options = append(options, opt)
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), id, userID, options...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

// DeleteTask POST /todo/{id}/delete
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		badID(w, r, err)
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id, userID); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена", zap.Int64("task_id", id))
	responseWithJSON(w, http.StatusOK, toPayload("message", "Задача удалена"))
}

// CompleteTask POST /todo/{id}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		badID(w, r, err)
		return
	}

	t, err := h.TaskService.CompleteTask(r.Context(), id, userID)
	if err != nil {
		handleServiceError(w, r, err, "complete_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

// RestoreTask POST /todo/{id}/restore
func (h *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		badID(w, r, err)
		return
	}

	t, err := h.TaskService.RestoreTask(r.Context(), id, userID)
	if err != nil {
		handleServiceError(w, r, err, "restore_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

// Calendar GET /api/todos_calendar
func (h *TaskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	events, err := h.TaskService.CalendarEvents(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "calendar_events")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromEvents(events))
}

// Completed GET /completed_todos
func (h *TaskHandler) Completed(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	history, err := h.TaskService.ListCompleted(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "list_completed")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromHistory(history))
}
