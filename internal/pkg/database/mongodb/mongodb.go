package mongodb

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	linkCollection   = "dcLinks"
	reportCollection = "dcReports"
)

// Handler stores the links and reports published on the system bus.
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
	URI      string `json:"URI"`
	Database string `json:"Database"`
	Port     string `json:"Port"`
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
	cfg := config{}
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

func (h Handler) PID() uuid.UUID {
	return h.pid
}

func (h Handler) uri() string {
	if h.config.Port == "" {
		return h.config.URI
	}
	return h.config.URI + ":" + h.config.Port
}

func recordToBSON(r record.Record) bson.M {
	m := bson.M{}
	for k, v := range r {
		m[k] = v
	}
	return m
}

func linkToBSON(e conversion.LinkEvent) bson.D {
	l := e.Link
	doc := bson.M{
		"link":       l.ID(),
		"runID":      e.RunID.String(),
		"type":       l.Type().String(),
		"converter1": recordToBSON(l.Converter1),
		"converter2": recordToBSON(l.Converter2),
		"line1":      recordToBSON(l.Line1),
		"aliases":    l.Aliases(),
		"r":          l.R,
		"ratedUdc":   l.RatedUdc,
		"update": bson.M{
			"mode":        e.Update.Mode.String(),
			"targetP":     e.Update.TargetP,
			"pDcInverter": e.Update.PDcInverter,
			"lossFactor1": e.Update.LossFactor1,
			"lossFactor2": e.Update.LossFactor2,
		},
	}
	if l.Line2 != nil {
		doc["line2"] = recordToBSON(l.Line2)
	}
	return bson.D{{Key: "$set", Value: doc}}
}

func reportToBSON(r report.Report) bson.D {
	return bson.D{{Key: "$set", Value: bson.M{
		"report":    r.ID.String(),
		"kind":      string(r.Kind),
		"severity":  r.Severity.String(),
		"island":    r.Island,
		"equipment": r.Equipment,
		"values":    r.Values,
		"message":   r.Message,
	}}}
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

func (h Handler) Process() {
	defer close(h.done)
	client, err := mongo.NewClient(options.Client().ApplyURI(h.uri()))
	if err != nil {
		log.Println("[Mongo]", err)
		return
	}

	ctx := context.TODO()
	connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	err = client.Connect(connectCtx)
	cancel()
	if err != nil {
		log.Println("[Mongo]", err)
		return
	}
	defer client.Disconnect(ctx)

	db := client.Database(h.config.Database)
	opts := options.Update().SetUpsert(true)
	log.Println("[Mongo] Process Started")
loop:
	for {
		select {
		case m := <-h.inbox:
			switch payload := m.Payload().(type) {
			case conversion.LinkEvent:
				_, err = db.Collection(linkCollection).UpdateOne(
					ctx,
					bson.M{"link": payload.Link.ID()},
					linkToBSON(payload),
					opts,
				)
			case report.Report:
				_, err = db.Collection(reportCollection).UpdateOne(
					ctx,
					bson.M{"report": payload.ID.String()},
					reportToBSON(payload),
					opts,
				)
			default:
				continue
			}
			if err != nil {
				log.Printf("[Mongo] %s from %s not stored: %v\n", m.Topic(), m.PID(), err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[Mongo] Process Shutdown")
}
