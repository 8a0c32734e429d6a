package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Position *int     `json:"position"`
	Answers  []string `json:"answers"`
}

type answerAccepted struct {
	Position int `json:"position"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

func errorMessage(err error) outboundMessage[any] {
	e := domain.AsError(err)
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: e.Code(), Message: e.Detail}}
}

// ServeWS joins a caller to a live quiz. Participants send answers; the owning teacher
// additionally receives tally updates.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key := query.Get("quizKey")
	caller := newCaller(query.Get("login"), query.Get("code"), query.Get("roles"))
	if key == "" || caller.Login == "" || caller.Code == "" {
		http.Error(w, "missing quizKey, login, or code", http.StatusBadRequest)
		return
	}
	log := config.WithContext(r.Context()).WithFields(logrus.Fields{"quiz_key": key, "participant": caller.Key()})

	projection, err := h.service.GetProjection(r.Context(), caller, key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var updates <-chan domain.TallyUpdate
	if caller.HasRole(domain.RoleTeacher) {
		ch, cancel, err := h.service.Subscribe(r.Context(), caller, key)
		switch {
		case err == nil:
			updates = ch
			defer cancel()
		case errors.Is(err, domain.ErrUnauthorized):
			// teachers of other quizzes join as plain participants
		default:
			writeError(w, r, err)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "tally", Payload: update}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	push(outboundMessage[any]{Type: "joined", Payload: projection})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(errorMessage(domain.Errorf(domain.KindInvalidPayload, "invalid answer payload")))
				continue
			}
			if err := h.service.SubmitAnswer(r.Context(), caller, key, payload.Position, payload.Answers); err != nil {
				push(errorMessage(err))
				continue
			}
			push(outboundMessage[any]{Type: "answerAccepted", Payload: answerAccepted{Position: *payload.Position}})
		default:
			push(errorMessage(domain.Errorf(domain.KindInvalidPayload, "unsupported message type %q", inbound.Type)))
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
