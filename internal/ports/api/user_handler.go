package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rescue-coordination-system/internal/application"
	"rescue-coordination-system/internal/domain"
)

// UserHandler обробляє HTTP-запити, пов'язані з користувачами
type UserHandler struct {
	userService *application.UserService
}

// NewUserHandler створює новий UserHandler
func NewUserHandler(userService *application.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRoutes реєструє маршрути для UserHandler
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/rescuers", h.ListRescuers)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
	})
}

// ListUsers обробляє GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// ListRescuers обробляє GET /users/rescuers
func (h *UserHandler) ListRescuers(w http.ResponseWriter, r *http.Request) {
	rescuers, err := h.userService.Rescuers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rescuers)
}

// CreateUser обробляє POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if request.ID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Create(r.Context(), &domain.User{
		ID:          request.ID,
		Email:       request.Email,
		DisplayName: request.DisplayName,
		Role:        domain.UserRole(request.Role),
		IsActive:    true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUser обробляє GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser обробляє PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Update(r.Context(), &domain.User{
		ID:          chi.URLParam(r, "id"),
		DisplayName: request.DisplayName,
		Role:        domain.UserRole(request.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
