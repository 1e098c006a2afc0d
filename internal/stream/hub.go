package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans position updates out to websocket viewers subscribed to a
// tracking key, locally and across instances via Redis pub/sub.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Key  string
	Send chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(key string) *Client {
	client := &Client{
		Key:  key,
		Send: make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[key] == nil {
		h.clients[key] = map[*Client]struct{}{}
	}
	h.clients[key][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if keyClients, ok := h.clients[client.Key]; ok {
		delete(keyClients, client)
		if len(keyClients) == 0 {
			delete(h.clients, client.Key)
		}
	}
	close(client.Send)
}

// Broadcast hands a position update to every viewer of key. With Redis
// configured the update goes through pub/sub only: the subscribe loop
// delivers it to this instance's viewers along with every other instance's,
// so a local send here would duplicate each message.
func (h *Hub) Broadcast(key string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(key), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(key, payload)
}

// deliver fans payload out to local subscribers. The read lock is held
// across the sends so Unregister cannot close a channel mid-send.
func (h *Hub) deliver(key string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[key] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "presence:*:updates")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(keyFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(key string) string {
	return "presence:" + key + ":updates"
}

func keyFromChannel(ch string) string {
	// presence:{key}:updates
	const prefix = "presence:"
	const suffix = ":updates"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
