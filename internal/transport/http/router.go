package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/quiz"
)

// Handler exposes the quiz commands and queries over REST.
type Handler struct {
	service  *app.QuizService
	catalogs []*catalog.Catalog
}

func NewHandler(service *app.QuizService, catalogs ...*catalog.Catalog) *Handler {
	return &Handler{service: service, catalogs: catalogs}
}

// NewRouter mounts the REST routes, the websocket endpoint and optional extra handlers such as /metrics.
func NewRouter(h *Handler, ws *WSHandler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	r.Get("/operations", h.ListOperations)
	r.Get("/ws", ws.ServeWS)

	r.Route("/quizzes", func(r chi.Router) {
		r.Post("/", h.CreateQuiz)
		r.Get("/", h.ListQuizzes)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", h.GetQuiz)
			r.Put("/", h.ReplaceQuiz)
			r.Delete("/", h.DeleteQuiz)
			r.Get("/projection", h.GetProjection)
			r.Route("/items/{position}", func(r chi.Router) {
				r.Get("/", h.GetItem)
				r.Post("/", h.AddItem)
				r.Put("/", h.UpdateItem)
				r.Delete("/", h.DeleteItem)
				r.Post("/answers", h.SubmitAnswer)
				r.Get("/tally", h.GetTally)
			})
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		config.WithContext(r.Context()).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("request served")
	})
}

type quizRequest struct {
	Name       string            `json:"name"`
	Categories []string          `json:"categories"`
	Items      []json.RawMessage `json:"items"`
}

type answerRequest struct {
	Answers []string `json:"answers"`
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Errorf(domain.KindInvalidPayload, "invalid request body"))
		return
	}
	q, err := h.service.CreateQuiz(r.Context(), callerFromRequest(r), app.QuizInput{Name: req.Name, Categories: req.Categories})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context(), callerFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []*quiz.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuiz(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) ReplaceQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Errorf(domain.KindInvalidPayload, "invalid request body"))
		return
	}
	in := app.QuizInput{Name: req.Name, Categories: req.Categories}
	if req.Items != nil {
		in.Items = make([]quiz.Item, 0, len(req.Items))
		for _, raw := range req.Items {
			item, err := quiz.UnmarshalItemContent(raw)
			if err != nil {
				writeError(w, r, err)
				return
			}
			in.Items = append(in.Items, item)
		}
	}
	q, err := h.service.ReplaceQuiz(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), callerFromRequest(r), chi.URLParam(r, "key")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProjection(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"), positionParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := quiz.MarshalItem(item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, data)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.writeItem(w, r, http.StatusCreated, h.service.AddItem)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.writeItem(w, r, http.StatusOK, h.service.UpdateItem)
}

type itemCommand func(ctx context.Context, caller domain.Caller, key string, position *int, item quiz.Item) error

func (h *Handler) writeItem(w http.ResponseWriter, r *http.Request, status int, cmd itemCommand) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, r, domain.Errorf(domain.KindInvalidPayload, "invalid request body"))
		return
	}
	item, err := quiz.UnmarshalItemContent(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := cmd(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"), positionParam(r), item); err != nil {
		writeError(w, r, err)
		return
	}
	data, err := quiz.MarshalItem(item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, status, data)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"), positionParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Errorf(domain.KindInvalidPayload, "invalid request body"))
		return
	}
	if err := h.service.SubmitAnswer(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"), positionParam(r), req.Answers); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) GetTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.service.GetTally(r.Context(), callerFromRequest(r), chi.URLParam(r, "key"), positionParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

type catalogView struct {
	Context    string                        `json:"context"`
	Operations []catalog.OperationDescriptor `json:"operations"`
}

func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		for _, c := range h.catalogs {
			if d, err := c.Describe(name); err == nil {
				writeJSON(w, http.StatusOK, d)
				return
			}
		}
		writeError(w, r, domain.Errorf(domain.KindUnknownOperation, "operation %q is not cataloged", name))
		return
	}
	views := make([]catalogView, 0, len(h.catalogs))
	for _, c := range h.catalogs {
		views = append(views, catalogView{Context: c.Context(), Operations: c.Descriptors()})
	}
	writeJSON(w, http.StatusOK, views)
}

// positionParam returns nil when the path segment is not an integer, which the service reports as InvalidPosition.
func positionParam(r *http.Request) *int {
	p, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		return nil
	}
	return &p
}
