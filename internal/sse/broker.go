// Package sse streams note and notebook change events to browser clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// CollectionUpdated is broadcast at most once per throttle window after any change.
const CollectionUpdated = "collection.updated"

const (
	keepAlive    = 30 * time.Second
	clientBuffer = 64
)

// Event is one server-sent event. Data is encoded as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// frame renders the event in text/event-stream form.
func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, payload), nil
}

type outgoing struct {
	event Event
	// change events are followed by a throttled collection.updated.
	change bool
}

// Broker fans events out to SSE clients. The client set lives in the loop
// goroutine; every public method is a message to it.
type Broker struct {
	throttle time.Duration

	join   chan chan []byte
	leave  chan chan []byte
	events chan outgoing
	count  chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits collection.updated at most once per throttle.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle: throttle,
		join:     make(chan chan []byte),
		leave:    make(chan chan []byte),
		events:   make(chan outgoing, 256),
		count:    make(chan chan int),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastBump time.Time

	send := func(e Event) {
		raw, err := e.frame()
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default: // slow client, drop
			}
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return
		case ch := <-b.join:
			clients[ch] = struct{}{}
		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}
		case out := <-b.events:
			send(out.event)
			if out.change && time.Since(lastBump) >= b.throttle {
				lastBump = time.Now()
				send(Event{Type: CollectionUpdated, Data: struct{}{}})
			}
		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed on Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.deliver(b.join, ch) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.deliver(b.leave, ch)
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.deliverCount(resp) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(e Event) {
	b.enqueue(outgoing{event: e})
}

// PublishChange broadcasts kind with {"id": id}, or {} when id is empty,
// then a throttled collection.updated.
func (b *Broker) PublishChange(kind, id string) {
	var data any = struct{}{}
	if id != "" {
		data = map[string]string{"id": id}
	}
	b.enqueue(outgoing{event: Event{Type: kind, Data: data}, change: true})
}

func (b *Broker) enqueue(out outgoing) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- out:
	case <-b.stopped:
	}
}

func (b *Broker) deliver(to chan chan []byte, ch chan []byte) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case to <- ch:
		return true
	case <-b.stopped:
		return false
	}
}

func (b *Broker) deliverCount(resp chan int) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.count <- resp:
		return true
	case <-b.stopped:
		return false
	}
}

// ServeHTTP streams events to one client until it disconnects (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		var msg []byte
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			msg = []byte(": ping\n\n")
		case m, ok := <-ch:
			if !ok {
				return
			}
			msg = m
		}
		if _, err := w.Write(msg); err != nil {
			return
		}
		flusher.Flush()
	}
}
