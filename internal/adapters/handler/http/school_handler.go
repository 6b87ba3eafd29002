package http

import (
	"net/http"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type SchoolHandler struct {
	service ports.SchoolService
}

func NewSchoolHandler(service ports.SchoolService) *SchoolHandler {
	return &SchoolHandler{
		service: service,
	}
}

func (h *SchoolHandler) SearchSchools(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing search query", http.StatusBadRequest)
		return
	}

	schools, err := h.service.Search(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if schools == nil {
		schools = []*domain.School{}
	}

	writeJSON(w, http.StatusOK, schools)
}
