package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"interviewd/backend/internal/domain"
	"interviewd/backend/internal/store"
)

const uniqueViolation = "23505"

type InterviewRepo struct {
	db *bun.DB
}

func NewInterviewRepo(db *bun.DB) *InterviewRepo {
	return &InterviewRepo{db: db}
}

// Create inserts the record inside a transaction that holds an advisory
// lock on the (interviewer, slot) pair, so two concurrent creates for the
// same slot serialize instead of both passing the existence check. The
// unique index on the pair is the backstop; its violation maps to
// store.ErrConflict either way.
func (r *InterviewRepo) Create(ctx context.Context, rec domain.Interview) (domain.Interview, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInterviewerSlot(ctx, tx, rec.InterviewerName, rec.ScheduledAt); err != nil {
			return err
		}

		exists, err := tx.NewSelect().
			Model((*domain.Interview)(nil)).
			Where("interviewer_name = ?", rec.InterviewerName).
			Where("date_time_of_interview = ?", rec.ScheduledAt).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrConflict
		}

		_, err = tx.NewInsert().Model(&rec).Exec(ctx)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Interview{}, store.ErrConflict
		}
		return domain.Interview{}, err
	}
	return rec, nil
}

func (r *InterviewRepo) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	var rec domain.Interview
	err := r.db.NewSelect().
		Model(&rec).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Interview{}, store.ErrNotFound
		}
		return domain.Interview{}, err
	}
	return rec, nil
}

func (r *InterviewRepo) FindBySlot(ctx context.Context, interviewerName, scheduledAt string) (domain.Interview, error) {
	var rec domain.Interview
	err := r.db.NewSelect().
		Model(&rec).
		Where("interviewer_name = ?", interviewerName).
		Where("date_time_of_interview = ?", scheduledAt).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Interview{}, store.ErrNotFound
		}
		return domain.Interview{}, err
	}
	return rec, nil
}

func (r *InterviewRepo) List(ctx context.Context, interviewerName string) ([]domain.Interview, error) {
	var rows []domain.Interview
	q := r.db.NewSelect().
		Model(&rows).
		OrderExpr("date_time_of_interview ASC")
	if interviewerName != "" {
		q = q.Where("interviewer_name = ?", interviewerName)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InterviewRepo) UpdateNote(ctx context.Context, id uuid.UUID, note, updatedAt string) (domain.Interview, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.Interview)(nil)).
		Set("note = ?", note).
		Set("date_time_updated_record = ?", updatedAt).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return domain.Interview{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Interview{}, err
	}
	if affected == 0 {
		return domain.Interview{}, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *InterviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Interview)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func lockInterviewerSlot(ctx context.Context, tx bun.Tx, interviewerName, scheduledAt string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", interviewerName+"\x00"+scheduledAt).Exec(ctx)
	return err
}
