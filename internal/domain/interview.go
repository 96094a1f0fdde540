package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MinuteLayout is the storage and wire form of every datetime on an
// interview record. Minute precision only.
const MinuteLayout = "2006-01-02 15:04"

type Interview struct {
	bun.BaseModel `bun:"table:interviews"`

	ID              uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	InterviewerName string    `bun:"interviewer_name,notnull" json:"interviewer_name"`
	IntervieweeName string    `bun:"interviewee_name,notnull" json:"interviewee_name"`
	ScheduledAt     string    `bun:"date_time_of_interview,notnull" json:"date_time_of_interview"`
	Note            *string   `bun:"note" json:"note"`
	CreatedAt       string    `bun:"date_time_created_record,notnull" json:"date_time_created_record"`
	UpdatedAt       *string   `bun:"date_time_updated_record" json:"date_time_updated_record"`
}

func (i *Interview) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if i.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		i.ID = id
	}
	if i.CreatedAt == "" {
		i.CreatedAt = FormatMinute(time.Now())
	}
	return nil
}

// FormatMinute renders t in MinuteLayout, dropping seconds.
func FormatMinute(t time.Time) string {
	return t.Format(MinuteLayout)
}

// ParseMinute parses a MinuteLayout datetime.
func ParseMinute(s string) (time.Time, error) {
	return time.Parse(MinuteLayout, s)
}
