package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"adoptchat/internal/entity"
)

type commandKind int

const (
	cmdRegister commandKind = iota
	cmdUnregister
	cmdSubscribe
	cmdUnsubscribe
)

type command struct {
	kind        commandKind
	client      *Client
	destination string
	done        chan struct{}
}

// Hub keeps the live sessions of this process and their subscriptions.
// Membership changes are serialized through Run; publishes only take the
// read lock, so any number of requests may publish concurrently.
type Hub struct {
	log           *slog.Logger
	clients       map[*Client]struct{}
	subscriptions map[string]map[*Client]struct{}
	commands      chan command
	stopped       chan struct{}
	mu            sync.RWMutex
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:           log,
		clients:       make(map[*Client]struct{}),
		subscriptions: make(map[string]map[*Client]struct{}),
		commands:      make(chan command),
		stopped:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case cmd := <-h.commands:
			h.handle(cmd)
			close(cmd.done)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) handle(cmd command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := cmd.client
	switch cmd.kind {
	case cmdRegister:
		h.clients[client] = struct{}{}
		h.subscribe(client, entity.UserDestination(client.UserId))
		h.log.Debug("Client connected", "user", client.UserId, "session", client.Id)

	case cmdUnregister:
		if _, ok := h.clients[client]; !ok {
			return
		}
		for destination := range client.destinations {
			h.unsubscribe(client, destination)
		}
		delete(h.clients, client)
		close(client.send)
		h.log.Debug("Client disconnected", "user", client.UserId, "session", client.Id)

	case cmdSubscribe:
		if _, ok := h.clients[client]; ok {
			h.subscribe(client, cmd.destination)
		}

	case cmdUnsubscribe:
		h.unsubscribe(client, cmd.destination)
	}
}

func (h *Hub) subscribe(client *Client, destination string) {
	subscribers, ok := h.subscriptions[destination]
	if !ok {
		subscribers = make(map[*Client]struct{})
		h.subscriptions[destination] = subscribers
	}
	subscribers[client] = struct{}{}
	client.destinations[destination] = struct{}{}
}

func (h *Hub) unsubscribe(client *Client, destination string) {
	delete(client.destinations, destination)
	subscribers, ok := h.subscriptions[destination]
	if !ok {
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.subscriptions, destination)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]struct{})
	h.subscriptions = make(map[string]map[*Client]struct{})
}

// apply hands cmd to Run and waits until it has been applied, so a caller
// that registers and then subscribes observes both in order.
func (h *Hub) apply(cmd command) {
	cmd.done = make(chan struct{})
	select {
	case h.commands <- cmd:
		<-cmd.done
	case <-h.stopped:
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.apply(command{kind: cmdRegister, client: client})
}

func (h *Hub) UnregisterClient(client *Client) {
	h.apply(command{kind: cmdUnregister, client: client})
}

func (h *Hub) Subscribe(client *Client, destination string) {
	h.apply(command{kind: cmdSubscribe, client: client, destination: destination})
}

func (h *Hub) Unsubscribe(client *Client, destination string) {
	h.apply(command{kind: cmdUnsubscribe, client: client, destination: destination})
}

func (h *Hub) Publish(ctx context.Context, destination string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := h.deliverLocal(destination, payload)
	return err
}

// deliverLocal frames payload once and offers it to every local subscriber of
// destination. A session whose buffer is full misses the frame.
func (h *Hub) deliverLocal(destination string, payload []byte) (int, error) {
	frame, err := json.Marshal(Frame{Destination: destination, Payload: payload})
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.subscriptions[destination] {
		select {
		case client.send <- frame:
			delivered++
		default:
			h.log.Warn("Send buffer full, dropping frame", "user", client.UserId, "session", client.Id, "destination", destination)
		}
	}
	return delivered, nil
}

// SendToClient queues a frame for a single session. It reports false when
// the session is gone or its buffer is full.
func (h *Hub) SendToClient(client *Client, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return false
	}
	select {
	case client.send <- frame:
		return true
	default:
		return false
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
