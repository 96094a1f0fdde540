package interviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"interviewd/backend/internal/domain"
	"interviewd/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ConflictError reports a double booking: the interviewer already holds an
// appointment at the same slot.
type ConflictError struct {
	InterviewerName string
	ScheduledAt     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already has an interview appointment at %s", e.InterviewerName, e.ScheduledAt)
}

type Service struct {
	repo store.InterviewRepository
	now  func() time.Time
}

func NewService(repo store.InterviewRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	InterviewerName string
	IntervieweeName string
	ScheduledAt     time.Time
	Note            *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Interview, error) {
	if in.InterviewerName == "" {
		return domain.Interview{}, validationError("interviewer_name is required")
	}
	if in.IntervieweeName == "" {
		return domain.Interview{}, validationError("interviewee_name is required")
	}
	if in.ScheduledAt.IsZero() {
		return domain.Interview{}, validationError("date_time_of_interview is required")
	}

	slot := domain.FormatMinute(in.ScheduledAt)

	_, err := s.repo.FindBySlot(ctx, in.InterviewerName, slot)
	switch {
	case err == nil:
		return domain.Interview{}, &ConflictError{InterviewerName: in.InterviewerName, ScheduledAt: slot}
	case !errors.Is(err, store.ErrNotFound):
		return domain.Interview{}, err
	}

	rec := domain.Interview{
		InterviewerName: in.InterviewerName,
		IntervieweeName: in.IntervieweeName,
		ScheduledAt:     slot,
		Note:            in.Note,
		CreatedAt:       domain.FormatMinute(s.now()),
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		// The store-level uniqueness check closes the window between the
		// lookup above and the insert.
		if errors.Is(err, store.ErrConflict) {
			return domain.Interview{}, &ConflictError{InterviewerName: in.InterviewerName, ScheduledAt: slot}
		}
		return domain.Interview{}, err
	}
	return created, nil
}

// Update replaces the note and stamps date_time_updated_record. All other
// fields are write-once.
func (s *Service) Update(ctx context.Context, id uuid.UUID, note string) (domain.Interview, error) {
	if id == uuid.Nil {
		return domain.Interview{}, validationError("id is required")
	}
	if note == "" {
		return domain.Interview{}, validationError("note is required")
	}
	return s.repo.UpdateNote(ctx, id, note, domain.FormatMinute(s.now()))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	if id == uuid.Nil {
		return domain.Interview{}, validationError("id is required")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, interviewerName string) ([]domain.Interview, error) {
	return s.repo.List(ctx, interviewerName)
}
