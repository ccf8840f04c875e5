package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"rescue-coordination-system/internal/domain"
)

// writeJSON серіалізує відповідь у JSON
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// writeError переводить доменні помилки у HTTP-статуси
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrDuplicateID):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrEmptyNodeSet):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// actorFromRequest відновлює виконавця дії з заголовків запиту.
// Аутентифікація виконується зовнішнім шлюзом; сервіс довіряє заголовкам.
func actorFromRequest(r *http.Request) domain.Actor {
	actor := domain.Actor{
		ID:          r.Header.Get("X-Actor-Id"),
		DisplayName: r.Header.Get("X-Actor-Name"),
		Role:        domain.UserRole(r.Header.Get("X-Actor-Role")),
	}
	if actor.DisplayName == "" {
		actor.DisplayName = actor.ID
	}
	return actor
}
