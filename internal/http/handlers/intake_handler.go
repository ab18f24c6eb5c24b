// README: Intake handlers for start/turn/audio/restart/get.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fria/internal/http/middleware"
	"fria/internal/modules/intake"
	"fria/internal/speech"
)

type IntakeHandler struct {
	intake *intake.Service
	speech speech.Transcriber
}

func NewIntakeHandler(svc *intake.Service, transcriber speech.Transcriber) *IntakeHandler {
	if transcriber == nil {
		transcriber = speech.Disabled{}
	}
	return &IntakeHandler{intake: svc, speech: transcriber}
}

type startReq struct {
	UserID string `json:"user_id"`
}

type turnReq struct {
	UserMessage     string   `json:"user_message"`
	Lat             *float64 `json:"lat"`
	Lon             *float64 `json:"lon"`
	AudioTranscript string   `json:"audio_transcript"`
}

type turnResp struct {
	LastMessage     string      `json:"last_message"`
	Done            bool        `json:"done"`
	Lane            intake.Lane `json:"lane"`
	ResolvedAddress string      `json:"resolved_address,omitempty"`
	Transcript      string      `json:"transcript,omitempty"`
}

type sessionView struct {
	SessionID       string             `json:"session_id"`
	UserID          string             `json:"user_id"`
	Lane            intake.Lane        `json:"lane"`
	State           intake.State       `json:"state"`
	Done            bool               `json:"done"`
	SafetyConfirmed *bool              `json:"safety_confirmed"`
	Form            map[string]*string `json:"form"`
	Transcript      []intake.Entry     `json:"transcript"`
	TowRequestID    string             `json:"tow_request_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func toTurnResp(out intake.Outbound) turnResp {
	return turnResp{LastMessage: out.LastMessage, Done: out.Done, Lane: out.Lane, ResolvedAddress: out.ResolvedAddress}
}

func (h *IntakeHandler) Start(c *gin.Context) {
	var req startReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	userID := middleware.CallerUID(c)
	if userID == "" {
		userID = req.UserID
	}
	sess, out, err := h.intake.Start(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"session_id":   sess.ID,
		"last_message": out.LastMessage,
		"done":         out.Done,
		"lane":         out.Lane,
	})
}

func (h *IntakeHandler) Turn(c *gin.Context) {
	var req turnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		writeError(c, http.StatusBadRequest, "lat and lon must be sent together")
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	out, err := h.intake.Continue(c.Request.Context(), sess.ID, intake.InboundTurn{
		Text:            req.UserMessage,
		AudioTranscript: req.AudioTranscript,
		Lat:             req.Lat,
		Lon:             req.Lon,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toTurnResp(out))
}

// Audio transcribes a multipart "audio" upload and runs it as a turn.
func (h *IntakeHandler) Audio(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, http.StatusBadRequest, "missing audio file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable audio file")
		return
	}
	defer f.Close()

	text, err := h.speech.Transcribe(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out, err := h.intake.Continue(c.Request.Context(), sess.ID, intake.InboundTurn{AudioTranscript: text})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	resp := toTurnResp(out)
	resp.Transcript = text
	writeJSON(c, http.StatusOK, resp)
}

func (h *IntakeHandler) Restart(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	out, err := h.intake.Restart(c.Request.Context(), sess.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toTurnResp(out))
}

func (h *IntakeHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, sessionView{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Lane:            sess.Lane,
		State:           sess.State,
		Done:            sess.Done,
		SafetyConfirmed: sess.SafetyConfirmed,
		Form:            sess.Form.Wire(),
		Transcript:      sess.Transcript.Entries(),
		TowRequestID:    sess.TowRequestID,
		CreatedAt:       sess.CreatedAt,
		UpdatedAt:       sess.UpdatedAt,
	})
}

// session loads the :id session and checks the caller owns it.
// It writes the error response itself and reports false on failure.
func (h *IntakeHandler) session(c *gin.Context) (*intake.Session, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	sess, err := h.intake.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	if !canAccess(c, sess.UserID) {
		writeError(c, http.StatusForbidden, "forbidden: session belongs to another user")
		return nil, false
	}
	return sess, true
}
