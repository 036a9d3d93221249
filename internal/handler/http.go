package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ultimatum-server/internal/export"
	"ultimatum-server/internal/game"
	"ultimatum-server/internal/models"
	"ultimatum-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var errInvalidSessionID = errors.New("invalid session id")

// requestValidator подключает validator/v10 к echo.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// ExperimentHandler обрабатывает HTTP запросы эксперимента.
type ExperimentHandler struct {
	service service.ExperimentService
	logger  *zap.Logger
}

func NewExperimentHandler(s service.ExperimentService, logger *zap.Logger) *ExperimentHandler {
	return &ExperimentHandler{
		service: s,
		logger:  logger.Named("ExperimentHandler"),
	}
}

// RegisterRoutes регистрирует маршруты и валидатор запросов.
func (h *ExperimentHandler) RegisterRoutes(e *echo.Echo) {
	e.Validator = &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}

	e.GET("/health", h.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	sessions := e.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.POST("/:id/start", h.startSession)
		sessions.POST("/:id/offer", h.submitOffer)
		sessions.POST("/:id/response", h.submitResponse)
		sessions.POST("/:id/emotion", h.submitEmotion)
		sessions.GET("/:id/summary", h.getSummary)
		sessions.GET("/:id/export", h.exportResults)
	}

	e.GET("/participants/:participantId/sessions", h.listParticipantSessions)
}

// handleServiceError преобразует ошибки сервиса в HTTP ответы.
func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Session not found"}
	case errors.Is(err, models.ErrInvalidState) || errors.Is(err, models.ErrWrongRole):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrSessionNotFinished):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, errInvalidSessionID):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.As(err, &validationErrs):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: describeValidation(validationErrs)}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("field %s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}

func parseSessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", errInvalidSessionID, c.Param("id"))
	}
	return id, nil
}

// bindAndValidate читает JSON тело запроса и проверяет его.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return handleServiceError(c, err)
	}
	return nil
}

func (h *ExperimentHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ExperimentHandler) createSession(c echo.Context) error {
	session, err := h.service.CreateSession(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, newSessionResponse(session))
}

func (h *ExperimentHandler) getSession(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	session, err := h.service.GetSession(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *ExperimentHandler) startSession(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req startSessionRequest
	if err := bindAndValidate(c, &req); err != nil || c.Response().Committed {
		return err
	}

	session, err := h.service.StartSession(c.Request().Context(), id, game.Identity{
		Consent:     req.Consent,
		Name:        req.Name,
		PhoneSuffix: req.PhoneSuffix,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *ExperimentHandler) submitOffer(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req offerRequest
	if err := bindAndValidate(c, &req); err != nil || c.Response().Committed {
		return err
	}

	res, err := h.service.SubmitOffer(c.Request().Context(), id, *req.Offer)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, actionResponse{
		Session:  newSessionResponse(res.Session),
		Record:   res.Record,
		Feedback: newFeedback(res.Record),
	})
}

func (h *ExperimentHandler) submitResponse(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req responseRequest
	if err := bindAndValidate(c, &req); err != nil || c.Response().Committed {
		return err
	}
	response, err := models.ParseResponse(req.Response)
	if err != nil {
		return handleServiceError(c, err)
	}

	res, err := h.service.SubmitResponse(c.Request().Context(), id, response)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, actionResponse{
		Session:  newSessionResponse(res.Session),
		Record:   res.Record,
		Feedback: newFeedback(res.Record),
	})
}

func (h *ExperimentHandler) submitEmotion(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	var req emotionRequest
	if err := bindAndValidate(c, &req); err != nil || c.Response().Committed {
		return err
	}
	emotion, err := models.ParseEmotion(req.Emotion)
	if err != nil {
		return handleServiceError(c, err)
	}

	res, err := h.service.SubmitEmotion(c.Request().Context(), id, emotion)
	if err != nil {
		return handleServiceError(c, err)
	}

	out := emotionResponse{
		Session: newSessionResponse(res.Session),
		Record:  res.Record,
		Done:    res.Done,
		Summary: res.Summary,
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	if len(out.Warnings) > 0 {
		h.logger.Warn("Trial completed with result sink warnings",
			zap.String("sessionID", id.String()),
			zap.Int("trial", res.Record.TrialNumber),
			zap.Strings("warnings", out.Warnings),
		)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ExperimentHandler) getSummary(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	session, err := h.service.GetSession(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	if !session.Finished() || session.Summary == nil {
		return handleServiceError(c, fmt.Errorf("%w: state %s", models.ErrSessionNotFinished, session.State))
	}
	return c.JSON(http.StatusOK, session.Summary)
}

func (h *ExperimentHandler) exportResults(c echo.Context) error {
	id, err := parseSessionID(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	doc, err := h.service.Export(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	data, err := doc.Marshal()
	if err != nil {
		h.logger.Error("Failed to marshal export document", zap.String("sessionID", id.String()), zap.Error(err))
		return handleServiceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}

func (h *ExperimentHandler) listParticipantSessions(c echo.Context) error {
	participantID := c.Param("participantId")
	ids, err := h.service.ListParticipantSessions(c.Request().Context(), participantID)
	if err != nil {
		return handleServiceError(c, err)
	}
	out := participantSessionsResponse{ParticipantID: participantID, SessionIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		out.SessionIDs = append(out.SessionIDs, id.String())
	}
	return c.JSON(http.StatusOK, out)
}
