package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

// PracticeHandler runs an interactive practice round over a websocket:
// the server generates questions, the client answers them one by one and
// receives per-answer feedback plus a final summary.
type PracticeHandler struct {
	service   *app.QuizService
	evaluator *app.Evaluator
	logger    *log.Logger
	upgrader  websocket.Upgrader
}

func NewPracticeHandler(service *app.QuizService, evaluator *app.Evaluator, logger *log.Logger) *PracticeHandler {
	return &PracticeHandler{
		service:   service,
		evaluator: evaluator,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index  int    `json:"index"`
	Answer *int64 `json:"answer"`
}

type answerResult struct {
	Index         int   `json:"index"`
	Correct       bool  `json:"correct"`
	CorrectAnswer int64 `json:"correctAnswer"`
	Score         int   `json:"score"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type summaryPayload struct {
	Score  int                     `json:"score"`
	Total  int                     `json:"total"`
	Review []domain.QuestionAnswer `json:"review"`
}

// ServePractice upgrades the request and drives one practice round.
func (h *PracticeHandler) ServePractice(w http.ResponseWriter, r *http.Request) {
	count := 5
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = parsed
	}

	questions, err := h.service.GenerateQuestions(count)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("ws upgrade failed: %v", err)
		}
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(outboundMessage[map[string][]string]{
		Type:    "questions",
		Payload: map[string][]string{"questions": questions},
	}); err != nil {
		return
	}

	score := 0
	answered := make([]bool, len(questions))
	remaining := len(questions)

	for remaining > 0 {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			if payload.Index < 0 || payload.Index >= len(questions) {
				h.sendError(conn, "question index out of range")
				continue
			}
			if answered[payload.Index] {
				h.sendError(conn, "question already answered")
				continue
			}

			correctAnswer, err := h.evaluator.Evaluate(questions[payload.Index])
			if err != nil {
				// Generated questions are pre-verified; this is a bug.
				h.sendError(conn, "question could not be evaluated")
				return
			}
			correct := payload.Answer != nil && *payload.Answer == correctAnswer
			if correct {
				score++
			}
			answered[payload.Index] = true
			remaining--

			if err := conn.WriteJSON(outboundMessage[answerResult]{Type: "answerResult", Payload: answerResult{
				Index:         payload.Index,
				Correct:       correct,
				CorrectAnswer: correctAnswer,
				Score:         score,
			}}); err != nil {
				return
			}
		case "finish":
			remaining = 0
		default:
			h.sendError(conn, "unsupported message type")
		}
	}

	review := make([]domain.QuestionAnswer, 0, len(questions))
	for _, question := range questions {
		if answer, ok := h.evaluator.TryEvaluate(question); ok {
			review = append(review, domain.QuestionAnswer{Question: question, CorrectAnswer: answer})
		}
	}
	_ = conn.WriteJSON(outboundMessage[summaryPayload]{Type: "summary", Payload: summaryPayload{
		Score:  score,
		Total:  len(questions),
		Review: review,
	}})
}

func (h *PracticeHandler) sendError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}
