package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

var validate = validator.New()

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type profileRequest struct {
	BirthYear int       `json:"birth_year" validate:"required,gte=1900,lte=2100"`
	Gender    string    `json:"gender" validate:"required,oneof=M F"`
	SchoolID  uuid.UUID `json:"school_id,omitempty"`
}

type schoolCandidateRequest struct {
	Source           string  `json:"source" validate:"required,oneof=careernet neis"`
	ExternalCode     string  `json:"external_code" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	Level            string  `json:"level" validate:"required,oneof=middle high univ grad"`
	CampusType       *string `json:"campus_type,omitempty"`
	ProvinceCode     string  `json:"province_code,omitempty"`
	MunicipalityCode string  `json:"municipality_code,omitempty"`
	Address          string  `json:"address,omitempty"`
	Status           string  `json:"status,omitempty"`
}

type submitVoteRequest struct {
	OptionID uuid.UUID               `json:"option_id" validate:"required"`
	Profile  *profileRequest         `json:"profile,omitempty"`
	School   *schoolCandidateRequest `json:"school,omitempty"`
}

func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	topicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid topic id", http.StatusBadRequest)
		return
	}

	var req submitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := ports.SubmitVoteInput{
		TopicID:  topicID,
		OptionID: req.OptionID,
		Identity: identityFrom(r),
	}
	if req.Profile != nil {
		input.Profile = &domain.Profile{
			BirthYear: req.Profile.BirthYear,
			Gender:    domain.Gender(req.Profile.Gender),
			SchoolID:  req.Profile.SchoolID,
		}
	}
	if req.School != nil {
		input.School = &ports.EnsureSchoolInput{
			Source:           domain.SchoolSource(req.School.Source),
			ExternalCode:     req.School.ExternalCode,
			Name:             req.School.Name,
			Level:            domain.SchoolLevel(req.School.Level),
			CampusType:       req.School.CampusType,
			ProvinceCode:     req.School.ProvinceCode,
			MunicipalityCode: req.School.MunicipalityCode,
			Address:          req.School.Address,
			Status:           req.School.Status,
		}
	}

	vote, err := h.service.Submit(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidIdentity),
			errors.Is(err, domain.ErrInvalidOption),
			errors.Is(err, domain.ErrTopicNotVotable),
			errors.Is(err, domain.ErrMissingProfile):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrDuplicateVote):
			// Already-voted is a conflict outcome for the UI, not a fault.
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrTopicNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, vote)
}

func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	topicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid topic id", http.StatusBadRequest)
		return
	}

	vote, err := h.service.MyVote(r.Context(), topicID, identityFrom(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidIdentity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrVoteNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"option_id": vote.OptionID.String()})
}

type mergeVotesRequest struct {
	GuestToken string `json:"guest_token" validate:"required"`
}

// MergeVotes folds the caller's pre-login guest votes into their user
// identity. Requires an authenticated caller.
func (h *VoteHandler) MergeVotes(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if identity.UserID == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req mergeVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.MergeGuestVotes(r.Context(), req.GuestToken, *identity.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
