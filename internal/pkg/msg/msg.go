package msg

import (
	"sync"

	"github.com/google/uuid"
)

// Topic classifies the payload of a Msg
type Topic int

// Constants of Topic
const (
	Report Topic = iota
	Link
)

func (t Topic) String() string {
	switch t {
	case Report:
		return "report"
	case Link:
		return "link"
	}
	return "unknown"
}

// Publisher is an interface for objects that allow subscribtion to their events
type Publisher interface {
	Subscribe(uuid.UUID, Topic) (<-chan Msg, error)
	Unsubscribe(uuid.UUID)
}

// Msg is the unit of data passed between publishers and subscribers
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID
func (v Msg) PID() uuid.UUID {
	return v.sender
}

// Topic returns the message topic
func (v Msg) Topic() Topic {
	return v.topic
}

// Payload returns the message data
func (v Msg) Payload() interface{} {
	return v.payload
}

// PubSub fans out messages to subscribers by topic.
type PubSub struct {
	mux         *sync.Mutex
	pid         uuid.UUID
	subscribers map[Topic]map[uuid.UUID]chan Msg
	buffer      int
}

// NewPublisher returns a PubSub whose published messages carry pid as sender.
func NewPublisher(pid uuid.UUID) *PubSub {
	return &PubSub{
		mux:         &sync.Mutex{},
		pid:         pid,
		subscribers: make(map[Topic]map[uuid.UUID]chan Msg),
		buffer:      50,
	}
}

func (p *PubSub) PID() uuid.UUID {
	return p.pid
}

// Subscribe returns a channel receiving every message published on topic.
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	subs, ok := p.subscribers[topic]
	if !ok {
		subs = make(map[uuid.UUID]chan Msg)
		p.subscribers[topic] = subs
	}
	if ch, ok := subs[pid]; ok {
		return ch, nil
	}
	ch := make(chan Msg, p.buffer)
	subs[pid] = ch
	return ch, nil
}

// Unsubscribe closes every subscription held by pid.
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, subs := range p.subscribers {
		if ch, ok := subs[pid]; ok {
			delete(subs, pid)
			close(ch)
		}
	}
}

// Publish sends payload to the subscribers of topic. Slow subscribers miss messages.
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.Forward(New(p.pid, topic, payload))
}

// Forward relays m unchanged to the subscribers of its topic.
func (p *PubSub) Forward(m Msg) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, ch := range p.subscribers[m.Topic()] {
		select {
		case ch <- m:
		default:
		}
	}
}

// Close terminates all subscriptions.
func (p *PubSub) Close() {
	p.mux.Lock()
	defer p.mux.Unlock()
	for topic, subs := range p.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(p.subscribers, topic)
	}
}
