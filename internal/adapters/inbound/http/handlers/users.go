package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases/commands"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases/queries"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
)

type (
	// UsersHandler serves the /api/users CRUD surface.
	UsersHandler struct {
		app *usecases.Application
	}

	userPayload struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		IsActive  bool      `json:"is_active"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	paginationPayload struct {
		Page    uint `json:"page"`
		Pages   uint `json:"pages"`
		PerPage uint `json:"per_page"`
		Total   uint `json:"total"`
		HasNext bool `json:"has_next"`
		HasPrev bool `json:"has_prev"`
	}

	userListResponse struct {
		Users      []userPayload     `json:"users"`
		Pagination paginationPayload `json:"pagination"`
		TraceID    string            `json:"trace_id,omitempty"`
	}

	userRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password,omitempty"`
	}
)

func NewUsersHandler(app *usecases.Application) *UsersHandler {
	return &UsersHandler{app: app}
}

func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := model.DefaultUserFilter()

	if page, err := strconv.ParseUint(r.URL.Query().Get("page"), 10, 32); err == nil {
		filter.Page = uint(page)
	}

	if perPage, err := strconv.ParseUint(r.URL.Query().Get("per_page"), 10, 32); err == nil {
		filter.PerPage = uint(perPage)
	}

	list, err := h.app.Queries.ListUsers.Execute(r.Context(), queries.ListUsersQuery{
		Filter:   filter.Normalize(),
		ClientIP: r.RemoteAddr,
	})
	if err != nil {
		writeError(w, r, err)

		return
	}

	users := make([]userPayload, 0, len(list.Users))
	for _, user := range list.Users {
		users = append(users, toUserPayload(user))
	}

	writeJSON(w, http.StatusOK, userListResponse{
		Users: users,
		Pagination: paginationPayload{
			Page:    list.Pagination.Page,
			Pages:   list.Pagination.TotalPages,
			PerPage: list.Pagination.PerPage,
			Total:   list.Pagination.TotalItems,
			HasNext: list.Pagination.HasNext,
			HasPrev: list.Pagination.HasPrevious,
		},
		TraceID: correlation.FromContext(r.Context()),
	})
}

func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationErrs := model.NewValidationErrors()
		validationErrs.Add("body", "request body must be valid JSON", "invalid_json")
		writeError(w, r, validationErrs)

		return
	}

	user, err := h.app.Commands.CreateUser.Handle(r.Context(), commands.CreateUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ClientIP: r.RemoteAddr,
	})
	if err != nil {
		writeError(w, r, err)

		return
	}

	w.Header().Set("Location", "/api/users/"+user.ID.String())
	writeJSON(w, http.StatusCreated, toUserPayload(user))
}

func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.app.Queries.GetUser.Execute(r.Context(), queries.GetUserQuery{ID: id})
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toUserPayload(user))
}

func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationErrs := model.NewValidationErrors()
		validationErrs.Add("body", "request body must be valid JSON", "invalid_json")
		writeError(w, r, validationErrs)

		return
	}

	user, err := h.app.Commands.UpdateUser.Handle(r.Context(), commands.UpdateUserCommand{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		ClientIP: r.RemoteAddr,
	})
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toUserPayload(user))
}

func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	if _, err := h.app.Commands.DeleteUser.Handle(r.Context(), commands.DeleteUserCommand{
		ID:       id,
		ClientIP: r.RemoteAddr,
	}); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) parseUserID(w http.ResponseWriter, r *http.Request) (model.UserID, bool) {
	id, err := model.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, model.ErrInvalidUserID)

		return model.UserID{}, false
	}

	return id, true
}

// toUserPayload shapes a user for the wire. The password hash is deliberately
// not part of the payload type.
func toUserPayload(user *model.User) userPayload {
	return userPayload{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
