package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"aireliance/adapters/excel"
	"aireliance/domain/core"
	"aireliance/internal"
	"aireliance/internal/analysis"
	apperrors "aireliance/internal/errors"
	"aireliance/internal/experiment"
	"aireliance/ui/middleware"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sessionHandler struct {
	manager *experiment.SessionManager
	logger  *internal.Logger
}

func newSessionHandler(manager *experiment.SessionManager, logger *internal.Logger) *sessionHandler {
	return &sessionHandler{manager: manager, logger: logger}
}

type answerRequest struct {
	Answer *bool `json:"answer" binding:"required"`
}

// Confidence range is checked by the session so it surfaces as a validation error
type confidenceRequest struct {
	Confidence *int `json:"confidence" binding:"required"`
}

func (h *sessionHandler) HandleCreate(c *gin.Context) {
	session, err := h.manager.CreateSession(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	schedule := session.Schedule()
	c.JSON(http.StatusCreated, gin.H{
		"participant_id":     session.ID().String(),
		"total_trials":       schedule.TotalTrials,
		"ai_eligible_trials": schedule.AIEligibleTrials,
		"view":               session.View(),
	})
}

func (h *sessionHandler) HandleView(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.Session(c).View())
}

func (h *sessionHandler) HandleBegin(c *gin.Context) {
	session := middleware.Session(c)
	if err := session.Begin(); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

func (h *sessionHandler) HandleAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidInput("answer must be true or false"))
		return
	}

	session := middleware.Session(c)
	if err := session.SetAnswer(*req.Answer); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

func (h *sessionHandler) HandleConfidence(c *gin.Context) {
	var req confidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.InvalidInput("confidence must be an integer"))
		return
	}

	session := middleware.Session(c)
	if err := session.SetConfidence(*req.Confidence); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

func (h *sessionHandler) HandleReveal(c *gin.Context) {
	session := middleware.Session(c)
	revealed, err := session.RequestAIReveal()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"revealed": revealed,
		"view":     session.View(),
	})
}

func (h *sessionHandler) HandleSubmit(c *gin.Context) {
	session := middleware.Session(c)
	outcome, err := session.Submit(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{
		"result":    outcome.Result,
		"score":     outcome.Score,
		"completed": outcome.Completed,
		"view":      session.View(),
	}
	if outcome.Submission != nil {
		body["submission"] = outcome.Submission
		body["notice"] = outcome.Submission.Notice()
	}
	c.JSON(http.StatusOK, body)
}

func (h *sessionHandler) HandleSummary(c *gin.Context) {
	session := middleware.Session(c)
	if _, submitted := session.Submission(); !submitted {
		h.respondError(c, core.ErrSessionNotDone)
		return
	}

	summary, err := analysis.Summarize(session.Results())
	if err != nil {
		h.respondError(c, apperrors.Wrap(err, "failed to summarize session"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"participant_id": session.ID().String(),
		"summary":        summary,
	})
}

func (h *sessionHandler) HandleWorkbook(c *gin.Context) {
	session := middleware.Session(c)
	if _, submitted := session.Submission(); !submitted {
		h.respondError(c, core.ErrSessionNotDone)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteResults(&buf, session.ID(), session.Results()); err != nil {
		h.respondError(c, apperrors.Wrap(err, "failed to build workbook"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="results-%s.xlsx"`, session.ID()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *sessionHandler) HandleDiscard(c *gin.Context) {
	session := middleware.Session(c)
	if _, submitted := session.Submission(); !submitted {
		h.respondError(c, core.ErrSessionNotDone)
		return
	}
	if err := h.manager.RemoveSession(c.Request.Context(), session.ID().String()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError writes the {"error", "code"} body for err
func (h *sessionHandler) respondError(c *gin.Context, err error) {
	classified := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(classified)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		h.logger.Debug("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}

	message := classified.Error()
	if appErr, ok := classified.(*apperrors.AppError); ok {
		message = appErr.Message
	}
	c.JSON(status, gin.H{
		"error": message,
		"code":  apperrors.GetCode(classified),
	})
}
