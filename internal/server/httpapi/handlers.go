package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	if _, err := rt.users.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	res, err := rt.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: res.Token,
		Name:  res.User.Name,
		Email: res.User.Email,
	})
}

// handleLogout always answers 200; a presented token is revoked when the
// server is configured to do so.
func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, _, ok := bearerToken(r.Header.Get(common.AuthorizationHeaderName)); ok {
		if err := rt.users.Logout(r.Context(), token); err != nil {
			rt.writeError(w, r, err)
			return
		}
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := rt.users.Profile(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (rt *Router) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := rt.tasks.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (rt *Router) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	task, err := rt.tasks.Create(r.Context(), userIDFromContext(r.Context()), req.Title, req.Description)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (rt *Router) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := rt.tasks.Get(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleUpdateTask overwrites title, description and completed. The body is
// decoded before the ownership check, so a malformed body is a 400 even on a
// foreign task; a well-formed one is judged by the service.
func (rt *Router) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	task, err := rt.tasks.Update(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"),
		req.Title, req.Description, req.Completed)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (rt *Router) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := rt.tasks.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted")
}
