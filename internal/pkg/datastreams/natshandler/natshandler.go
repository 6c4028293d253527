package natshandler

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"

	nats "github.com/nats-io/nats.go"
)

// Handler forwards the links and reports published on the system bus to a
// NATS server.
type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	system msg.Publisher
	stop   chan bool
	done   chan struct{}
}

type config struct {
	Server string `json:"Server"`
	Prefix string `json:"Prefix"`
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

func New(configPath string, system msg.Publisher) (Handler, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{Server: nats.DefaultURL, Prefix: "hvdc"}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, _ := uuid.NewUUID()

	inbox := make(chan msg.Msg, 50)

	chLink, err := system.Subscribe(pid, msg.Link)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chLink, inbox)

	chReport, err := system.Subscribe(pid, msg.Report)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chReport, inbox)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		system: system,
		stop:   make(chan bool),
		done:   make(chan struct{}),
	}, nil
}

// Stop ends Process, which may already have returned, and drops the
// subscriptions of the handler.
func (h *Handler) Stop() {
	select {
	case h.stop <- true:
		<-h.done
	case <-h.done:
	}
	h.system.Unsubscribe(h.pid)
}

// subject returns the NATS subject of a bus message, "" when the message is
// not forwarded.
func (h Handler) subject(m msg.Msg) string {
	switch payload := m.Payload().(type) {
	case conversion.LinkEvent:
		return strings.Join([]string{h.config.Prefix, "links", token(payload.Link.ID())}, ".")
	case report.Report:
		return strings.Join([]string{h.config.Prefix, "reports", token(string(payload.Kind))}, ".")
	}
	return ""
}

// token strips the characters NATS reserves in subjects.
func token(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}

func (h Handler) Process() {
	defer close(h.done)
	log.Println("[NATS client] Process Started")
	nc, err := nats.Connect(h.config.Server, nats.Name("hvdc-"+h.pid.String()))
	if err != nil {
		log.Println("[NATS client]", err)
		return
	}
	defer nc.Close()

loop:
	for {
		select {
		case m := <-h.inbox:
			subject := h.subject(m)
			if subject == "" {
				continue
			}
			data, err := json.Marshal(m.Payload())
			if err != nil {
				continue
			}
			if err = nc.Publish(subject, data); err != nil {
				log.Printf("unable to publish to nats server: %v", err)
			}

		case <-h.stop:
			nc.Flush()
			break loop
		}
	}
	log.Println("[NATS client] Process Shutdown")
}
