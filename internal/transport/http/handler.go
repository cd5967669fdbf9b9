package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/auth"
	"mathquiz-service/internal/domain"
)

// Handler exposes the quiz lifecycle over REST.
type Handler struct {
	service *app.QuizService
	tokens  *auth.Service
	logger  *log.Logger
}

func NewHandler(service *app.QuizService, tokens *auth.Service, logger *log.Logger) *Handler {
	return &Handler{service: service, tokens: tokens, logger: logger}
}

// Register wires the REST routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("GET /quizzes", h.list)
	mux.HandleFunc("POST /quizzes", h.create)
	mux.HandleFunc("PUT /quizzes/{id}", h.update)
	mux.HandleFunc("DELETE /quizzes/{id}", h.delete)
	mux.HandleFunc("GET /questions", h.generate)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createRequest struct {
	Questions   []string `json:"questions"`
	UserAnswers []*int64 `json:"userAnswers"`
}

type updateRequest struct {
	UserAnswers []*int64 `json:"userAnswers"`
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// login validates stub credentials and issues a bearer token. Replace the
// credential check with a real identity backend; issuance is the only part
// this service owns.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrValidation)
		return
	}
	if req.Username == "" || req.Password != req.Username {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Kind: "unauthenticated", Message: "invalid credentials"})
		return
	}
	token, err := h.tokens.IssueToken(req.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListForOwner(r.Context(), h.tokens.Identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrValidation)
		return
	}
	created, err := h.service.Create(r.Context(), h.tokens.Identity(r), req.Questions, req.UserAnswers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrValidation)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrValidation)
		return
	}
	updated, err := h.service.Update(r.Context(), h.tokens.Identity(r), id, req.UserAnswers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), h.tokens.Identity(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, domain.ErrInvalidCount)
			return
		}
		count = parsed
	}
	questions, err := h.service.GenerateQuestions(count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"questions": questions})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := domain.Kind(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError && h.logger != nil {
		h.logger.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Kind: kind, Message: err.Error()})
}

func statusFor(kind string) int {
	switch kind {
	case "bad-input":
		return http.StatusBadRequest
	case "unauthenticated":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "not-found":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
