// Websocket endpoints pushing live results.
//
//   - GET /stream/docs/{path}   (live collection or document binding)
//   - GET /stream/state         (application state snapshots)
//
// Each message is one JSON event carrying the full current result, never a
// delta. The server pings every pingPeriod; a client that stops answering is
// dropped after pongWait.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-fitcircle/internal/binding"
	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/domain"
	"github.com/tbourn/go-fitcircle/internal/http/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Origins are checked by the CORS layer for regular requests; browsers do
// not preflight websocket upgrades, so the stream routes accept any origin
// and rely on the same identity header as the rest of the API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

var streamsOpen = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "fitcircle",
	Name:      "streams_open",
	Help:      "Open websocket streams by kind.",
}, []string{"kind"})

func init() { prometheus.MustRegister(streamsOpen) }

// CollectionEvent is pushed for every settled collection result.
type CollectionEvent struct {
	Type  string            `json:"type" example:"collection"`
	Path  string            `json:"path" example:"groups/g1/messages"`
	Items []docstore.Record `json:"items"`
}

// DocumentEvent is pushed for every settled document result. Data is null
// when the document is missing or could not be read.
type DocumentEvent struct {
	Type string          `json:"type" example:"document"`
	Path string          `json:"path" example:"users/u1"`
	Data docstore.Record `json:"data"`
}

// StateEvent is pushed for every committed application state.
type StateEvent struct {
	Type  string          `json:"type" example:"state"`
	State domain.AppState `json:"state"`
}

type stream struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	kind   string
}

// openStream upgrades the connection and starts the read and ping pumps.
// The stream context ends when the client goes away.
func openStream(c *gin.Context, kind string) (*stream, bool) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		middleware.LoggerFrom(c).Debug().Err(err).Msg("websocket upgrade")
		return nil, false
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	s := &stream{conn: conn, ctx: ctx, cancel: cancel, kind: kind}
	streamsOpen.WithLabelValues(kind).Inc()

	go s.readPump()
	go s.pingPump()
	return s, true
}

// readPump discards client messages; it exists to process control frames
// and notice disconnects.
func (s *stream) readPump() {
	defer s.cancel()
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *stream) pingPump() {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.cancel()
				return
			}
		}
	}
}

func (s *stream) send(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, raw)
}

func (s *stream) close() {
	s.cancel()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	_ = s.conn.Close()
	streamsOpen.WithLabelValues(s.kind).Dec()
}

// StreamDocuments godoc
// @ID          streamDocuments
// @Summary     Live collection or document over a websocket
// @Description Upgrades to a websocket and pushes a CollectionEvent or DocumentEvent after every
// @Description change. Collections accept the same query parameters as GET /docs/{path}.
// @Tags        Streams
// @Param       path      path   string    true   "Slash-separated path"  example(groups/g1/messages)
// @Param       where     query  []string  false  "Filter field:op:value"  collectionFormat(multi)
// @Param       order_by  query  []string  false  "Ordering field[:asc|:desc]"  collectionFormat(multi)
// @Param       limit     query  int       false  "Maximum documents"
// @Success     101  {object}  handlers.CollectionEvent  "Switching Protocols"
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /stream/docs/{path} [get]
func (h *Handlers) StreamDocuments(c *gin.Context) {
	p, ok1 := pathParam(c)
	if !ok1 {
		return
	}
	var cs docstore.Constraints
	if p.IsCollection() {
		var ok2 bool
		if cs, ok2 = constraintsQuery(c); !ok2 {
			return
		}
	}

	s, ok3 := openStream(c, "documents")
	if !ok3 {
		return
	}
	defer s.close()

	err := h.watch(s, p, cs)
	if err != nil && !errors.Is(err, context.Canceled) {
		middleware.LoggerFrom(c).Debug().Err(err).Str("doc_path", p.Key()).Msg("document stream ended")
	}
}

func (h *Handlers) watch(s *stream, p docpath.Path, cs docstore.Constraints) error {
	key := p.Key()
	if p.IsCollection() {
		return h.docs.WatchCollection(s.ctx, p, cs, func(r binding.CollectionResult) error {
			return s.send(CollectionEvent{Type: "collection", Path: key, Items: r.Items})
		})
	}
	return h.docs.WatchDocument(s.ctx, p, func(r binding.DocumentResult) error {
		return s.send(DocumentEvent{Type: "document", Path: key, Data: r.Data})
	})
}

// StreamState godoc
// @ID          streamState
// @Summary     Application state over a websocket
// @Description Pushes the current StateEvent on connect and again after every committed action.
// @Description Slow clients skip intermediate snapshots but never receive an older one.
// @Tags        Streams
// @Success     101  {object}  handlers.StateEvent  "Switching Protocols"
// @Router      /stream/state [get]
func (h *Handlers) StreamState(c *gin.Context) {
	s, ok := openStream(c, "state")
	if !ok {
		return
	}
	defer s.close()

	// Holds at most the newest undelivered snapshot.
	latest := make(chan domain.AppState, 1)
	cancel := h.state.Watch(func(st domain.AppState) {
		select {
		case <-latest:
		default:
		}
		latest <- st
	})
	defer cancel()

	for {
		select {
		case <-s.ctx.Done():
			return
		case st := <-latest:
			if err := s.send(StateEvent{Type: "state", State: st}); err != nil {
				middleware.LoggerFrom(c).Debug().Err(err).Msg("state stream ended")
				return
			}
		}
	}
}
