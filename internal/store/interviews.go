package store

import (
	"context"

	"github.com/google/uuid"

	"interviewd/backend/internal/domain"
)

type InterviewRepository interface {
	Create(ctx context.Context, rec domain.Interview) (domain.Interview, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Interview, error)
	FindBySlot(ctx context.Context, interviewerName, scheduledAt string) (domain.Interview, error)
	List(ctx context.Context, interviewerName string) ([]domain.Interview, error)
	UpdateNote(ctx context.Context, id uuid.UUID, note, updatedAt string) (domain.Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
