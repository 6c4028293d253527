package webservice

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ohowland/cgc_hvdc/internal/pkg/comm/modbuscomm"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
)

const (
	streamWriteWait     = 10 * time.Second
	defaultMaxModelSize = 32 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// ConvertResponse is the body returned by POST /convert.
type ConvertResponse struct {
	RunID   uuid.UUID       `json:"RunID"`
	Links   []dclink.DCLink `json:"Links"`
	Skipped []string        `json:"Skipped"`
	Reports []report.Report `json:"Reports"`
	Error   string          `json:"Error,omitempty"`
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Error string `json:"Error"`
}

type cached struct {
	result conversion.Result
	err    string
}

// Service serves the conversion over HTTP. The links of the latest run are
// kept for the link endpoints.
type Service struct {
	converter    conversion.Converter
	setpoints    *modbuscomm.SetpointSource
	cache        *lru.Cache[string, cached]
	streamRate   time.Duration
	maxModelSize int64

	mux    *sync.RWMutex
	latest conversion.Result
}

// New returns a Service. setpoints may be nil, links are then updated from
// their modelled setpoints. streamRate must be positive.
func New(converter conversion.Converter, setpoints *modbuscomm.SetpointSource, cacheSize int, streamRate time.Duration) (*Service, error) {
	if streamRate <= 0 {
		return nil, fmt.Errorf("stream period must be positive, got %s", streamRate)
	}
	cache, err := lru.New[string, cached](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		converter:    converter,
		setpoints:    setpoints,
		cache:        cache,
		streamRate:   streamRate,
		maxModelSize: defaultMaxModelSize,
		mux:          &sync.RWMutex{},
	}, nil
}

func makeRouter(s *Service) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", BaseHandler).Methods("GET")
	r.HandleFunc("/convert", s.ConvertHandler).Methods("POST")
	r.HandleFunc("/links", s.LinksHandler).Methods("GET")
	r.HandleFunc("/links/{id}/update", s.UpdateHandler).Methods("GET")
	r.HandleFunc("/links/{id}/stream", s.StreamHandler).Methods("GET")
	return r
}

// Router returns the HTTP handler of the service.
func (s *Service) Router() http.Handler {
	return makeRouter(s)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("[Webservice] malformed JSON:", err)
	}
}

func BaseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
}

func (s *Service) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxModelSize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{fmt.Sprintf("model exceeds %d bytes", tooLarge.Limit)})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}
	sum := sha256.Sum256(body)
	key := hex.EncodeToString(sum[:])

	code := http.StatusOK
	c, ok := s.cache.Get(key)
	if !ok {
		m, err := record.Decode(body, ".json")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{err.Error()})
			return
		}
		result, err := s.converter.Convert(m)
		if result.RunID == uuid.Nil {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{err.Error()})
			return
		}
		c = cached{result: result}
		if err != nil {
			c.err = err.Error()
		}
		s.cache.Add(key, c)
		code = http.StatusCreated
	}

	s.mux.Lock()
	s.latest = c.result
	s.mux.Unlock()

	writeJSON(w, code, ConvertResponse{
		RunID:   c.result.RunID,
		Links:   c.result.Links,
		Skipped: c.result.Skipped,
		Reports: c.result.Reports,
		Error:   c.err,
	})
}

func (s *Service) LinksHandler(w http.ResponseWriter, r *http.Request) {
	s.mux.RLock()
	links := s.latest.Links
	s.mux.RUnlock()
	if links == nil {
		links = []dclink.DCLink{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Service) link(id string) (dclink.DCLink, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.latest.Link(id)
}

// update computes the operating point of a link, with live setpoints when a
// setpoint source is configured.
func (s *Service) update(link dclink.DCLink) dclink.DCLinkUpdate {
	if s.setpoints != nil {
		live, err := s.setpoints.Live(link)
		if err != nil {
			log.Println("[Webservice] live setpoints:", err)
		}
		link = live
	}
	return s.converter.Update(link)
}

func (s *Service) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	link, ok := s.link(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{"unknown DC link " + id})
		return
	}
	writeJSON(w, http.StatusOK, s.update(link))
}

// StreamHandler pushes the operating point of a link on a websocket, once
// per stream period, until the client goes away.
func (s *Service) StreamHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	link, ok := s.link(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{"unknown DC link " + id})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamRate)
	defer ticker.Stop()
	for {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(s.update(link)); err != nil {
			return
		}
		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
