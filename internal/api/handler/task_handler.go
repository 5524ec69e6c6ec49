package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/core/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
	cache   *service.ResponseCache
}

// msgTaskFieldsRequired is kept verbatim for existing clients.
const msgTaskFieldsRequired = "Title and assignedTo are required"

func NewTaskHandler(svc ports.TaskService, cache *service.ResponseCache) *TaskHandler {
	return &TaskHandler{service: svc, cache: cache}
}

// Create stores a new task.
//
// @Summary      Create a task
// @Description  Managers and admins only. Tasks cannot be assigned to admin users.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /psiborg/task/create [post]
func (h *TaskHandler) Create(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" || req.AssignedTo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgTaskFieldsRequired)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), claims, ports.CreateTaskInput{
		Title:      req.Title,
		AssignedTo: req.AssignedTo,
		Priority:   req.Priority,
		Status:     req.Status,
		DueDate:    due,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, taskResponse{Message: "Task created successfully", Task: task})
}

// Update applies a partial update to a task.
//
// @Summary      Update a task
// @Description  Managers and admins only. Unknown priority or status values are ignored.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /psiborg/task/update/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), claims, ports.UpdateTaskInput{
		ID:         req.ID,
		Title:      req.Title,
		AssignedTo: req.AssignedTo,
		Priority:   req.Priority,
		Status:     req.Status,
		DueDate:    due,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskResponse{Message: "Task updated successfully", Task: task})
}

// Delete removes a task.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /psiborg/task/delete/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var p taskIDParam
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if err := h.service.Delete(c.Request().Context(), claims, p.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

// List returns the tasks visible to the caller, served through the
// response cache.
//
// @Summary      List tasks
// @Description  Admins see every task, managers the tasks they created and users the tasks assigned to them.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "pending or complete"
// @Param        priority  query     string  false  "low, medium or high"
// @Success      200       {object}  taskListResponse
// @Failure      401       {object}  messageResponse
// @Failure      500       {object}  messageResponse
// @Router       /psiborg/task/getAllTask [get]
func (h *TaskHandler) List(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req listTasksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	q := ports.TaskQuery{Status: req.Status, Priority: req.Priority}

	body, err := h.cache.ReadThrough(c.Request().Context(), service.TasksCacheKey(claims, q), func(ctx context.Context) (any, error) {
		tasks, err := h.service.List(ctx, claims, q)
		if err != nil {
			return nil, err
		}
		return taskListResponse{Message: "Tasks fetched successfully", Tasks: tasks}, nil
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}
