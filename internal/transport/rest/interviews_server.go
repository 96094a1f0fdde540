package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"interviewd/backend/internal/domain"
	"interviewd/backend/internal/schema"
	"interviewd/backend/internal/service/interviews"
	"interviewd/backend/internal/store"
)

const notFoundMessage = "Interview is not found."

type InterviewsServer struct {
	svc interviewsService
	log *slog.Logger
}

type interviewsService interface {
	Create(ctx context.Context, in interviews.CreateInput) (domain.Interview, error)
	Update(ctx context.Context, id uuid.UUID, note string) (domain.Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.Interview, error)
	List(ctx context.Context, interviewerName string) ([]domain.Interview, error)
}

func NewInterviewsServer(svc interviewsService, log *slog.Logger) *InterviewsServer {
	if log == nil {
		log = slog.Default()
	}
	return &InterviewsServer{
		svc: svc,
		log: log.With(slog.String("component", "rest.interviews")),
	}
}

func (s *InterviewsServer) CreateInterview(c *gin.Context) {
	log := s.log.With(slog.String("handler", "CreateInterview"))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn("body read failed", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot read request body"})
		return
	}

	req, fieldErrs := schema.DecodeCreate(body, time.Now())
	if fieldErrs != nil {
		log.Warn("invalid payload", slog.Int("fields", len(fieldErrs)))
		c.JSON(http.StatusUnprocessableEntity, validationBody(fieldErrs))
		return
	}

	rec, err := s.svc.Create(c.Request.Context(), interviews.CreateInput{
		InterviewerName: req.InterviewerName,
		IntervieweeName: req.IntervieweeName,
		ScheduledAt:     req.ScheduledAt,
		Note:            req.Note,
	})
	if err != nil {
		s.writeServiceError(c, log, err)
		return
	}

	log.Info(
		"interview created",
		slog.String("interview_id", rec.ID.String()),
		slog.String("interviewer_name", rec.InterviewerName),
		slog.String("slot", rec.ScheduledAt),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Interview record created. Interviewer: " + rec.InterviewerName})
}

func (s *InterviewsServer) UpdateInterview(c *gin.Context) {
	log := s.log.With(slog.String("handler", "UpdateInterview"))

	id, ok := parseID(c)
	if !ok {
		log.Info("malformed interview id", slog.String("id", c.Param("id")))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn("body read failed", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot read request body"})
		return
	}

	req, fieldErrs := schema.DecodeUpdate(body)
	if fieldErrs != nil {
		log.Warn("invalid payload", slog.Int("fields", len(fieldErrs)))
		c.JSON(http.StatusUnprocessableEntity, validationBody(fieldErrs))
		return
	}

	rec, err := s.svc.Update(c.Request.Context(), id, req.Note)
	if err != nil {
		s.writeServiceError(c, log, err)
		return
	}

	log.Info("interview updated", slog.String("interview_id", rec.ID.String()))
	c.JSON(http.StatusOK, gin.H{"message": "Interview record updated"})
}

func (s *InterviewsServer) DeleteInterview(c *gin.Context) {
	log := s.log.With(slog.String("handler", "DeleteInterview"))

	id, ok := parseID(c)
	if !ok {
		log.Info("malformed interview id", slog.String("id", c.Param("id")))
		return
	}

	if err := s.svc.Delete(c.Request.Context(), id); err != nil {
		s.writeServiceError(c, log, err)
		return
	}

	log.Info("interview deleted", slog.String("interview_id", id.String()))
	c.JSON(http.StatusOK, gin.H{"message": "Interview record deleted"})
}

func (s *InterviewsServer) GetInterview(c *gin.Context) {
	log := s.log.With(slog.String("handler", "GetInterview"))

	id, ok := parseID(c)
	if !ok {
		log.Info("malformed interview id", slog.String("id", c.Param("id")))
		return
	}

	rec, err := s.svc.Get(c.Request.Context(), id)
	if err != nil {
		s.writeServiceError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *InterviewsServer) ListInterviews(c *gin.Context) {
	log := s.log.With(slog.String("handler", "ListInterviews"))

	rows, err := s.svc.List(c.Request.Context(), c.Query("interviewer_name"))
	if err != nil {
		s.writeServiceError(c, log, err)
		return
	}
	if rows == nil {
		rows = []domain.Interview{}
	}

	c.JSON(http.StatusOK, gin.H{"interviews": rows})
}

// parseID resolves the path id. A malformed id gets the same not-found
// response as a missing record, never a crash.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage})
		return uuid.Nil, false
	}
	return id, true
}

func (s *InterviewsServer) writeServiceError(c *gin.Context, log *slog.Logger, err error) {
	var cErr *interviews.ConflictError
	if errors.As(err, &cErr) {
		log.Info(
			"interview slot conflict",
			slog.String("interviewer_name", cErr.InterviewerName),
			slog.String("slot", cErr.ScheduledAt),
		)
		c.JSON(http.StatusConflict, gin.H{"message": cErr.Error()})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage})
		return
	}
	var vErr *interviews.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusUnprocessableEntity, validationBody(schema.FieldErrors{"_schema": {vErr.Error()}}))
		return
	}
	log.Error("request failed", slog.Any("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func validationBody(fieldErrs schema.FieldErrors) gin.H {
	return gin.H{"errors": gin.H{"json": fieldErrs}}
}
