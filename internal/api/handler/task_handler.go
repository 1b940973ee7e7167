package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every route behind
// it runs after the Auth middleware, so the owner identity is always present.
type TaskHandler struct {
	service  ports.TaskService
	activity ports.ActivityService // nil = feed disabled
}

func NewTaskHandler(service ports.TaskService, activity ports.ActivityService) *TaskHandler {
	return &TaskHandler{service: service, activity: activity}
}

// Create handles POST /tasks. Any owner field in the payload is ignored; the
// task always belongs to the authenticated caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task fields"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		Category:    req.Category,
	}
	if req.Deadline != nil {
		input.Deadline = &req.Deadline.Time
	}

	task, err := h.service.Create(c.Request().Context(), owner, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

// List handles GET /tasks with optional priority, completed, and sortBy query
// parameters. Absent parameters place no constraint; present ones compose
// with AND.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        priority   query     string  false  "Exact priority filter (low|medium|high)"
// @Param        completed  query     string  false  "Completion filter (true|false)"
// @Param        sortBy     query     string  false  "Sort key, e.g. deadline:desc"
// @Success      200        {array}   domain.Task
// @Failure      401        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	query := ports.ListTasksQuery{
		Priority: c.QueryParam("priority"),
		SortBy:   c.QueryParam("sortBy"),
	}
	if raw := c.QueryParam("completed"); raw != "" {
		completed := raw == "true"
		query.Completed = &completed
	}

	tasks, err := h.service.List(c.Request().Context(), owner, query)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	return c.JSON(http.StatusOK, tasks)
}

// Update handles PATCH /tasks/:id. The body is decoded strictly: unknown or
// immutable fields fail with 400 rather than being applied.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Partial task fields"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: "+err.Error())
	}

	update := ports.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Category:    req.Category,
	}
	if req.Deadline != nil {
		update.Deadline = &req.Deadline.Time
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		update.Priority = &p
	}

	task, err := h.service.Update(c.Request().Context(), owner, c.Param("id"), update)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id and returns the deleted record.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	task, err := h.service.Delete(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// Activity handles GET /tasks/activity: the caller's recent mutation feed.
//
// @Summary      Recent task activity for the caller
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ActivityEntry
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /tasks/activity [get]
func (h *TaskHandler) Activity(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if h.activity == nil {
		return c.JSON(http.StatusOK, []domain.ActivityEntry{})
	}

	entries, err := h.activity.Feed(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}

	return c.JSON(http.StatusOK, entries)
}
