package handler // handler defines http handlers

import (
    "context"  // context bounds store calls per request
    "net/http" // HTTP status codes
    "strconv"  // strconv converts path params to numeric ids

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/todo-api/internal/middleware" // CurrentUser exposes the authenticated owner
    "github.com/iliyamo/todo-api/internal/service"    // todo business logic
)

// TodoHandler serves the owner-scoped todo endpoints.  Every route is
// mounted behind JWTAuth, so the owner always comes from the token and
// never from the request body.
type TodoHandler struct {
    Todos *service.TodoService
}

// NewTodoHandler panics on a nil service, like the other constructors.
func NewTodoHandler(todos *service.TodoService) *TodoHandler {
    if todos == nil {
        panic("nil service passed to NewTodoHandler")
    }
    return &TodoHandler{Todos: todos}
}

type createTodoReq struct {
    Title string `json:"title"`
}

// editTodoReq uses a pointer so an omitted title leaves the todo alone.
type editTodoReq struct {
    Title *string `json:"title"`
}

// List returns the caller's todos, newest first.
func (h *TodoHandler) List(c echo.Context) error {
    owner, ok := middleware.CurrentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    list, err := h.Todos.List(ctx, owner.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, list)
}

// Create adds a todo owned by the caller.
func (h *TodoHandler) Create(c echo.Context) error {
    owner, ok := middleware.CurrentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }
    var req createTodoReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    t, err := h.Todos.Create(ctx, owner.ID, req.Title)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, t)
}

// Complete marks the caller's todo :id as done.
func (h *TodoHandler) Complete(c echo.Context) error {
    owner, ok := middleware.CurrentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }
    id, err := parseTodoID(c)
    if err != nil {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid todo id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    t, err := h.Todos.Complete(ctx, owner.ID, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, t)
}

// Edit applies a partial update to the caller's todo :id.
func (h *TodoHandler) Edit(c echo.Context) error {
    owner, ok := middleware.CurrentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }
    id, err := parseTodoID(c)
    if err != nil {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid todo id"})
    }
    var req editTodoReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    t, err := h.Todos.Edit(ctx, owner.ID, id, service.TodoPatch{Title: req.Title})
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, t)
}

// parseTodoID reads the :id path param.  Ids are positive and fit the
// signed 64-bit id column; zero is never valid.
func parseTodoID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 63)
    if err != nil {
        return 0, err
    }
    if id == 0 {
        return 0, strconv.ErrRange
    }
    return id, nil
}
