package placement

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/b1prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartPlacementRequest
	if r.Body != nil {
		// Body is optional; an empty one means defaults.
		json.NewDecoder(r.Body).Decode(&req)
	}

	resp, err := h.service.StartPlacement(req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start placement"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.NextQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.State.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing quiz state"})
		return
	}

	resp, err := h.service.NextQuestion(r.Context(), &req.State, req.Pool)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate question"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.PlacementAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.State.SessionID == "" || req.Question.ID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing quiz state or question"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to grade answer"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.CompletePlacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.State.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing quiz state"})
		return
	}

	resp, err := h.service.CompletePlacement(r.Context(), userID, &req.State)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to complete placement: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.service.GetPlacementData(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load placement data"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetLearningPath(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	path, err := h.service.GetLearningPath(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load learning path"})
		return
	}

	if path == nil {
		path = []models.LearningPathItem{}
	}
	writeJSON(w, http.StatusOK, path)
}

func (h *Handler) SkipPathItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	topicID, err := strconv.Atoi(vars["topicId"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid topic ID"})
		return
	}

	if err := h.service.SkipPathItem(userID, topicID); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to skip topic"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
