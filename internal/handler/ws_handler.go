package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/middleware"
	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
	ws "github.com/stemsi/onlinexam-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams one exam attempt per connection.
type WSHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamWebSocketStream godoc
// WS /ws/v1/exams/:id/stream?token=
// The connection owns a fresh attempt engine; it is dropped on disconnect.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Load before upgrading so a missing exam is a plain HTTP error.
	engine, err := h.sessionService.NewEngine(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		failWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Int("exam_id", examID).
		Logger()

	wsLog.Info().Msg("User connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var writeErr error
		switch msg.Action {
		case ws.ActionSelect:
			writeErr = h.handleSelect(conn, engine, &msg)
		case ws.ActionSubmit:
			writeErr = h.handleSubmit(c, conn, wsLog, engine)
		case ws.ActionRetake:
			writeErr = h.handleRetake(conn, engine)
		case ws.ActionPing:
			writeErr = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			writeErr = ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
		if writeErr != nil {
			wsLog.Debug().Err(writeErr).Msg("Write failed")
			return
		}
	}
}

func (h *WSHandler) handleSelect(conn *websocket.Conn, engine *attempt.Engine, msg *ws.RequestPayload) error {
	if msg.Index == nil || msg.Answer == "" {
		return ws.WriteError(conn, string(response.ErrValidation), "index and ans are required")
	}
	if err := engine.SelectAnswer(*msg.Index, msg.Answer); err != nil {
		return writeEngineError(conn, err)
	}
	return writeState(conn, engine)
}

func (h *WSHandler) handleSubmit(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, engine *attempt.Engine) error {
	a, err := engine.Submit(c.Request.Context())
	if err != nil && !errors.Is(err, attempt.ErrPersistence) {
		return writeEngineError(conn, err)
	}

	res := ws.GradedResponse{
		Event:         ws.EventGraded,
		Score:         a.Score,
		Total:         a.Total,
		AttemptNumber: a.AttemptNumber,
		Correct:       attempt.Grade(engine.Exam().Questions, engine.Answers()),
		Persisted:     err == nil,
	}
	if err != nil {
		res.Warning = "Your score could not be saved to your history."
		wsLog.Warn().Err(err).Int("score", a.Score).Msg("Attempt graded but not persisted")
	} else {
		wsLog.Info().
			Int("score", a.Score).
			Int("attempt_number", a.AttemptNumber).
			Msg("Attempt submitted")
	}
	return ws.WriteTyped(conn, res)
}

func (h *WSHandler) handleRetake(conn *websocket.Conn, engine *attempt.Engine) error {
	if err := engine.Retake(); err != nil {
		return writeEngineError(conn, err)
	}
	return writeState(conn, engine)
}

func writeState(conn *websocket.Conn, engine *attempt.Engine) error {
	return ws.WriteTyped(conn, ws.SuccessResponse{
		Event:   ws.EventSuccess,
		State:   string(engine.State()),
		Answers: engine.Answers(),
	})
}

func writeEngineError(conn *websocket.Conn, err error) error {
	_, code := errorStatus(err)
	return ws.WriteError(conn, string(code), response.GetMessage(code))
}
