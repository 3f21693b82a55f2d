package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-evaluator/internal/evaluator"
	"github.com/spigell/interview-evaluator/internal/report"
	"github.com/spigell/interview-evaluator/internal/rubric"
	"github.com/spigell/interview-evaluator/internal/session"
	"github.com/spigell/interview-evaluator/internal/speech"
)

const listsVsTuples = "Lists are mutable and tuples are immutable. You use a list when ordered, changeable data is needed, " +
	"and a tuple when you want fixed data. For example, coordinates are often tuples."

func newTestServer(t *testing.T, cfg Config, log *zap.Logger) http.Handler {
	t.Helper()
	store, err := rubric.Default()
	if err != nil {
		t.Fatalf("load rubric: %v", err)
	}
	engine, err := evaluator.New(store, log)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	srv, err := New(cfg, Deps{
		Logger: log,
		Store:  store,
		Scorer: engine,
		Speech: speech.NewAnalyzer(nil),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, Deps{}); err == nil {
		t.Fatalf("expected error without store")
	}
	store, err := rubric.Default()
	if err != nil {
		t.Fatalf("load rubric: %v", err)
	}
	if _, err := New(Config{}, Deps{Store: store}); err == nil {
		t.Fatalf("expected error without scorer")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())
	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status    string `json:"status"`
		Questions int    `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Questions != 10 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestQuestions(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())

	t.Run("list", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/questions", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var out []questionResp
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out) != 10 {
			t.Fatalf("expected 10 questions, got %d", len(out))
		}
		if out[1].Index != 1 || out[1].QuestionNumber != 2 || !strings.Contains(out[1].Question, "tuple") {
			t.Fatalf("unexpected question: %+v", out[1])
		}
	})

	t.Run("single", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/questions/1", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var out questionResp
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out.EssentialGroups) != 3 || out.LengthExpectations == nil {
			t.Fatalf("unexpected question: %+v", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if rec := do(t, h, http.MethodGet, "/api/v1/questions/99", "", nil); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("not a number", func(t *testing.T) {
		if rec := do(t, h, http.MethodGet, "/api/v1/questions/abc", "", nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())

	payload, err := json.Marshal(map[string]any{"question_index": 1, "transcript": listsVsTuples})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rec := do(t, h, http.MethodPost, "/api/v1/evaluate", string(payload), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Status string           `json:"status"`
		Score  float64          `json:"combined_score"`
		Method string           `json:"scoring_method"`
		Speech *speech.Analysis `json:"speech_analysis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ok" || out.Score != 8.4 || out.Method != evaluator.MethodKeyword {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out.Speech == nil || out.Speech.WordCount != 31 {
		t.Fatalf("expected speech analysis of 31 words, got %+v", out.Speech)
	}
}

func TestEvaluateByQuestionNumber(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())
	rec := do(t, h, http.MethodPost, "/api/v1/evaluate", `{"question_number": 8, "transcript": "I don't know"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out evaluator.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.QuestionIndex != 7 || out.Score != 0 {
		t.Fatalf("unexpected result: index=%d score=%v", out.QuestionIndex, out.Score)
	}
}

func TestEvaluateRejectsBadRequests(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "malformed", body: `{"question_index":`, code: http.StatusBadRequest},
		{name: "unknown field", body: `{"question_index": 1, "answer": "x"}`, code: http.StatusBadRequest},
		{name: "no question", body: `{"transcript": "x"}`, code: http.StatusBadRequest},
		{name: "both references", body: `{"question_index": 1, "question_number": 2, "transcript": "x"}`, code: http.StatusBadRequest},
		{name: "unknown question", body: `{"question_index": 42, "transcript": "x"}`, code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/evaluate", tt.body, nil)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			var e errResp
			if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Fatalf("expected error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestEvaluateRequiresJSON(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())
	rec := do(t, h, http.MethodPost, "/api/v1/evaluate", `{}`, map[string]string{"Content-Type": "text/plain"})
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, int, string) (*evaluator.Result, error) {
	return nil, errors.New("boom")
}

func TestEvaluateScorerFailure(t *testing.T) {
	t.Parallel()

	store, err := rubric.Default()
	if err != nil {
		t.Fatalf("load rubric: %v", err)
	}
	core, observed := observer.New(zapcore.ErrorLevel)
	srv, err := New(Config{}, Deps{Logger: zap.New(core), Store: store, Scorer: failingScorer{}})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/evaluate", `{"question_index": 1, "transcript": "x"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
	if observed.FilterMessage("evaluating answer").Len() != 1 {
		t.Fatalf("expected error log, got %v", observed.All())
	}
}

func TestSessions(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{Session: session.Config{ExcludeQuestions: []int{3}}}, zap.NewNop())

	payload, err := json.Marshal(map[string]any{
		"candidate_name": "Jane",
		"questions_data": []map[string]any{
			{"question_number": 2, "question_text": "lists?", "transcript": listsVsTuples},
			{"question_number": 3, "question_text": "exceptions?", "transcript": "I use try and except."},
			{"question_number": 8, "question_text": "injection?", "transcript": "I don't know"},
			{"question_number": 5, "question_text": "slow query?", "transcript": "   "},
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", string(payload), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc report.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Candidate != "Jane" || doc.SessionID == "" {
		t.Fatalf("unexpected document header: %+v", doc)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 evaluated items, got %d", len(doc.Items))
	}
	if doc.Items[0].QuestionNumber != 2 || doc.Items[1].QuestionNumber != 8 {
		t.Fatalf("unexpected order: %d, %d", doc.Items[0].QuestionNumber, doc.Items[1].QuestionNumber)
	}
	if doc.Summary.Count != 2 || doc.Summary.Highest != 8.4 || doc.Summary.Lowest != 0 {
		t.Fatalf("unexpected summary: %+v", doc.Summary)
	}
}

func TestSessionsRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{}, zap.NewNop())
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", `{"questions_data": [{"question_number": 0, "transcript": "x"}]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAPIToken(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Config{APIToken: "s3cret"}, zap.NewNop())

	if rec := do(t, h, http.MethodGet, "/api/v1/questions", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/questions", "", map[string]string{"Authorization": "Bearer nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/questions", "", map[string]string{"Authorization": "Bearer s3cret"}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz must stay open, got %d", rec.Code)
	}
}

func TestRequestLogging(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	h := newTestServer(t, Config{}, zap.New(core))

	do(t, h, http.MethodGet, "/healthz", "", nil)

	entries := observed.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/healthz" || fields["status"] != int64(http.StatusOK) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["request_id"] == "" {
		t.Fatalf("expected request id")
	}
}
