// Package server exposes the evaluator over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/evaluator"
	"github.com/spigell/interview-evaluator/internal/report"
	"github.com/spigell/interview-evaluator/internal/rubric"
	"github.com/spigell/interview-evaluator/internal/session"
	"github.com/spigell/interview-evaluator/internal/speech"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 2 * time.Minute
)

// Config holds the HTTP server settings.
type Config struct {
	Addr     string
	APIToken string
	Session  session.Config
}

// Deps aggregates what the handlers need.
type Deps struct {
	Logger *zap.Logger
	Store  *rubric.Store
	Scorer evaluator.Scorer
	Speech *speech.Analyzer
}

type Server struct {
	cfg    Config
	store  *rubric.Store
	scorer evaluator.Scorer
	speech *speech.Analyzer
	logger *zap.Logger
}

func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("rubric store is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return &Server{
		cfg:    cfg,
		store:  deps.Store,
		scorer: deps.Scorer,
		speech: deps.Speech,
		logger: deps.Logger,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, requestLogger(s.logger), m.Recoverer, m.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "questions": s.store.Len()})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.APIToken != "" {
			r.Use(RequireAPIToken(s.cfg.APIToken))
		}
		r.Get("/questions", s.listQuestions)
		r.Get("/questions/{index}", s.getQuestion)
		r.With(m.AllowContentType("application/json")).Post("/evaluate", s.evaluate)
		r.With(m.AllowContentType("application/json")).Post("/sessions", s.evaluateSession)
	})

	return r
}

// HTTPServer wraps Handler into a ready to start http.Server.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type errResp struct {
	Error string `json:"error"`
}

type questionResp struct {
	Index              int                        `json:"index"`
	QuestionNumber     int                        `json:"question_number"`
	Type               string                     `json:"type"`
	Question           string                     `json:"question"`
	EssentialGroups    []string                   `json:"essential_groups,omitempty"`
	BonusGroups        []string                   `json:"bonus_groups,omitempty"`
	LengthExpectations *rubric.LengthExpectations `json:"length_expectations,omitempty"`
}

type evaluateReq struct {
	QuestionIndex  *int   `json:"question_index"`
	QuestionNumber *int   `json:"question_number"`
	Transcript     string `json:"transcript"`
}

type evaluateResp struct {
	*evaluator.Result
	Speech *speech.Analysis `json:"speech_analysis,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) listQuestions(w http.ResponseWriter, _ *http.Request) {
	out := make([]questionResp, 0, s.store.Len())
	for _, idx := range s.store.Indices() {
		e, _ := s.store.Entry(idx)
		out = append(out, questionResp{Index: idx, QuestionNumber: idx + 1, Type: e.Type, Question: e.Question})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{"index must be an integer"})
		return
	}
	e, ok := s.store.Entry(idx)
	if !ok {
		writeJSON(w, http.StatusNotFound, errResp{(&evaluator.UnknownQuestionError{Index: idx}).Error()})
		return
	}
	l := e.LengthExpectations
	writeJSON(w, http.StatusOK, questionResp{
		Index:              idx,
		QuestionNumber:     idx + 1,
		Type:               e.Type,
		Question:           e.Question,
		EssentialGroups:    e.EssentialKeywords.Names(),
		BonusGroups:        e.BonusKeywords.Names(),
		LengthExpectations: &l,
	})
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateReq
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{err.Error()})
		return
	}

	var index int
	switch {
	case req.QuestionIndex != nil && req.QuestionNumber != nil:
		writeJSON(w, http.StatusBadRequest, errResp{"set either question_index or question_number"})
		return
	case req.QuestionIndex != nil:
		index = *req.QuestionIndex
	case req.QuestionNumber != nil:
		index = *req.QuestionNumber - 1
	default:
		writeJSON(w, http.StatusBadRequest, errResp{"question_index or question_number is required"})
		return
	}

	res, err := s.scorer.Score(r.Context(), index, req.Transcript)
	switch {
	case errors.Is(err, evaluator.ErrUnknownQuestion):
		writeJSON(w, http.StatusNotFound, errResp{err.Error()})
		return
	case err != nil:
		s.logger.Error("evaluating answer", zap.Int("question_index", index), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errResp{"evaluation failed"})
		return
	}

	out := evaluateResp{Result: res}
	if s.speech != nil {
		out.Speech = s.speech.Analyze(req.Transcript)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) evaluateSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	in, err := session.ReadInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{err.Error()})
		return
	}

	cfg := s.cfg.Session
	ev, err := session.New(&cfg, session.Deps{Logger: s.logger, Scorer: s.scorer, Speech: s.speech})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{err.Error()})
		return
	}

	outcome, err := ev.Evaluate(r.Context(), in.Items)
	if err != nil {
		s.logger.Error("evaluating session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errResp{"session evaluation failed"})
		return
	}

	writeJSON(w, http.StatusOK, report.NewDocument(in.Candidate, started, outcome))
}
