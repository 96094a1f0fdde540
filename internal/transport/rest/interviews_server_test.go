package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"interviewd/backend/internal/domain"
	"interviewd/backend/internal/service/interviews"
	"interviewd/backend/internal/store"
)

type fakeService struct {
	createFn func(ctx context.Context, in interviews.CreateInput) (domain.Interview, error)
	updateFn func(ctx context.Context, id uuid.UUID, note string) (domain.Interview, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
	getFn    func(ctx context.Context, id uuid.UUID) (domain.Interview, error)
	listFn   func(ctx context.Context, interviewerName string) ([]domain.Interview, error)
}

func (f *fakeService) Create(ctx context.Context, in interviews.CreateInput) (domain.Interview, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeService) Update(ctx context.Context, id uuid.UUID, note string) (domain.Interview, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, id, note)
}

func (f *fakeService) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeService) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeService) List(ctx context.Context, interviewerName string) ([]domain.Interview, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, interviewerName)
}

func newTestRouter(t *testing.T, svc *fakeService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(NewInterviewsServer(svc, nil), nil, RouterConfig{})
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Message
}

func decodeFieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body struct {
		Errors struct {
			JSON map[string][]string `json:"json"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Errors.JSON
}

func TestCreateInterview_Success(t *testing.T) {
	var got interviews.CreateInput
	r := newTestRouter(t, &fakeService{
		createFn: func(ctx context.Context, in interviews.CreateInput) (domain.Interview, error) {
			got = in
			return domain.Interview{
				ID:              uuid.MustParse("00000000-0000-0000-0000-000000000201"),
				InterviewerName: in.InterviewerName,
				IntervieweeName: in.IntervieweeName,
				ScheduledAt:     domain.FormatMinute(in.ScheduledAt),
			}, nil
		},
	})

	w := doRequest(t, r, http.MethodPost, "/interview", `{
		"interviewer_name": "John",
		"interviewee_name": "Alex",
		"date_time_of_interview": "2100-02-26 14:35"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if msg := decodeMessage(t, w); msg != "Interview record created. Interviewer: John" {
		t.Fatalf("message = %q", msg)
	}
	if got.InterviewerName != "John" || got.IntervieweeName != "Alex" {
		t.Fatalf("service input = %+v", got)
	}
}

func TestCreateInterview_Conflict(t *testing.T) {
	r := newTestRouter(t, &fakeService{
		createFn: func(ctx context.Context, in interviews.CreateInput) (domain.Interview, error) {
			return domain.Interview{}, &interviews.ConflictError{
				InterviewerName: in.InterviewerName,
				ScheduledAt:     domain.FormatMinute(in.ScheduledAt),
			}
		},
	})

	w := doRequest(t, r, http.MethodPost, "/interview", `{
		"interviewer_name": "John",
		"interviewee_name": "Alex",
		"date_time_of_interview": "2100-02-26 14:35"
	}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	want := "John already has an interview appointment at 2100-02-26 14:35"
	if msg := decodeMessage(t, w); msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}

func TestCreateInterview_ValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
		want  string
	}{
		{
			"past date",
			`{"interviewer_name": "John", "interviewee_name": "Alex", "date_time_of_interview": "2023-01-14 14:35"}`,
			"date_time_of_interview",
			"Input upcoming date and time only",
		},
		{
			"bad date format",
			`{"interviewer_name": "John", "interviewee_name": "Alex", "date_time_of_interview": "2100-02-26-14-35"}`,
			"date_time_of_interview",
			"Not a valid datetime.",
		},
		{
			"name as int",
			`{"interviewer_name": 64, "interviewee_name": "Alex", "date_time_of_interview": "2100-02-26 14:35"}`,
			"interviewer_name",
			"Not a valid string.",
		},
	}

	// The service must never be reached on validation failures.
	r := newTestRouter(t, &fakeService{})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/interview", tc.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
			}
			msgs := decodeFieldErrors(t, w)[tc.field]
			if len(msgs) != 1 || msgs[0] != tc.want {
				t.Fatalf("messages = %v, want [%q]", msgs, tc.want)
			}
		})
	}
}

func TestUpdateInterview(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000301")

	t.Run("existing", func(t *testing.T) {
		r := newTestRouter(t, &fakeService{
			updateFn: func(ctx context.Context, updID uuid.UUID, note string) (domain.Interview, error) {
				if updID != id {
					t.Fatalf("id = %s, want %s", updID, id)
				}
				stamp := "2100-03-01 08:00"
				return domain.Interview{ID: updID, Note: &note, UpdatedAt: &stamp}, nil
			},
		})

		w := doRequest(t, r, http.MethodPut, "/interview/"+id.String(), `{"note": "Update this note"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if msg := decodeMessage(t, w); msg != "Interview record updated" {
			t.Fatalf("message = %q", msg)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		r := newTestRouter(t, &fakeService{
			updateFn: func(ctx context.Context, updID uuid.UUID, note string) (domain.Interview, error) {
				return domain.Interview{}, store.ErrNotFound
			},
		})

		w := doRequest(t, r, http.MethodPut, "/interview/"+id.String(), `{"note": "Update this note"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
		if msg := decodeMessage(t, w); msg != "Interview is not found." {
			t.Fatalf("message = %q", msg)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		r := newTestRouter(t, &fakeService{})

		w := doRequest(t, r, http.MethodPut, "/interview/not-an-id", `{"note": "Update this note"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
		if msg := decodeMessage(t, w); msg != "Interview is not found." {
			t.Fatalf("message = %q", msg)
		}
	})

	t.Run("invalid note", func(t *testing.T) {
		r := newTestRouter(t, &fakeService{})

		w := doRequest(t, r, http.MethodPut, "/interview/"+id.String(), `{"note": "hey"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
		msgs := decodeFieldErrors(t, w)["note"]
		if len(msgs) != 1 || msgs[0] != "Shorter than minimum length 5." {
			t.Fatalf("messages = %v", msgs)
		}
	})
}

func TestDeleteInterview(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000401")

	t.Run("existing", func(t *testing.T) {
		r := newTestRouter(t, &fakeService{
			deleteFn: func(ctx context.Context, delID uuid.UUID) error {
				return nil
			},
		})

		w := doRequest(t, r, http.MethodDelete, "/interview/"+id.String(), "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if msg := decodeMessage(t, w); msg != "Interview record deleted" {
			t.Fatalf("message = %q", msg)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		r := newTestRouter(t, &fakeService{
			deleteFn: func(ctx context.Context, delID uuid.UUID) error {
				return store.ErrNotFound
			},
		})

		w := doRequest(t, r, http.MethodDelete, "/interview/"+id.String(), "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
		if msg := decodeMessage(t, w); msg != "Interview is not found." {
			t.Fatalf("message = %q", msg)
		}
	})
}

func TestGetInterview(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000501")
	note := "This is note"

	r := newTestRouter(t, &fakeService{
		getFn: func(ctx context.Context, getID uuid.UUID) (domain.Interview, error) {
			return domain.Interview{
				ID:              getID,
				InterviewerName: "John",
				IntervieweeName: "Alex",
				ScheduledAt:     "2100-02-26 14:35",
				Note:            &note,
				CreatedAt:       "2100-01-01 09:00",
			}, nil
		},
	})

	w := doRequest(t, r, http.MethodGet, "/interview/"+id.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var rec domain.Interview
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rec.ID != id || rec.InterviewerName != "John" || rec.ScheduledAt != "2100-02-26 14:35" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.UpdatedAt != nil {
		t.Fatalf("updated stamp = %v, want null", *rec.UpdatedAt)
	}
}

func TestListInterviews_FilterForwarded(t *testing.T) {
	var gotFilter string
	r := newTestRouter(t, &fakeService{
		listFn: func(ctx context.Context, interviewerName string) ([]domain.Interview, error) {
			gotFilter = interviewerName
			return nil, nil
		},
	})

	w := doRequest(t, r, http.MethodGet, "/interviews?interviewer_name=John", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotFilter != "John" {
		t.Fatalf("filter = %q, want %q", gotFilter, "John")
	}

	var body struct {
		Interviews []domain.Interview `json:"interviews"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Interviews == nil {
		t.Fatalf("interviews should encode as an empty array, got null")
	}
}
