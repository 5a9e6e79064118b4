package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiznight-service/internal/app"
	"quiznight-service/internal/domain"
)

// MonitorHandler serves the presentation layers: a websocket that pushes
// scoreboard snapshots and carries operator commands, and a plain JSON
// endpoint for polling front ends. It only ever touches the coordinator's
// read models and operator surface, never the grading path.
type MonitorHandler struct {
	coordinator *app.Coordinator
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

func NewMonitorHandler(coordinator *app.Coordinator, log *zap.Logger) *MonitorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MonitorHandler{
		coordinator: coordinator,
		log:         log,
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

type gradePayload struct {
	Team    string `json:"team"`
	Part    int    `json:"part"`
	Correct bool   `json:"correct"`
}

type phasePayload struct {
	Phase domain.Phase `json:"phase"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeScoreboard returns one scoreboard snapshot for polling UIs.
func (h *MonitorHandler) ServeScoreboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.coordinator.Scoreboard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(board)
}

// ServeWS upgrades the connection and wires it into the scoreboard feed
// and the operator control surface.
func (h *MonitorHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel, err := h.coordinator.Subscribe(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case board, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "scoreboard", Payload: board}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *MonitorHandler) dispatch(r *http.Request, inbound inboundMessage) error {
	ctx := r.Context()
	switch inbound.Type {
	case "grade":
		var payload gradePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid grade payload")
		}
		return h.coordinator.SubmitOperatorGrade(ctx, payload.Team, payload.Part, payload.Correct)
	case "phase":
		var payload phasePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid phase payload")
		}
		if payload.Phase != domain.PhaseHidden && payload.Phase != domain.PhaseRevealed {
			return errors.New("unknown phase")
		}
		return h.coordinator.SetPhase(ctx, payload.Phase)
	case "advance":
		return h.coordinator.Advance(ctx)
	case "reset":
		return h.coordinator.Reset(ctx)
	default:
		return errors.New("unsupported message type")
	}
}
