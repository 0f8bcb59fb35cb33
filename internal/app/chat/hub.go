/*
Package chat implements the realtime gateway: connection lifecycle, history,
message posting with sanitization, authorized deletion, and broadcast.

This file defines the Hub, the single-process registry of live connections.
Its Run loop owns the membership map; registration, deregistration and
broadcasting are serialized through channels.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"mikuchat/internal/pkg/logx"
)

const broadcastChannelBuffer = 1024

type registration struct {
	client  *Client
	channel string
}

type envelope struct {
	channel string
	data    []byte
}

// Hub tracks live connections grouped by channel and fans broadcast frames
// out to them. Delivery is fire-and-forget: a client whose send queue is full
// misses the frame and is unregistered.
type Hub struct {
	// members maps channel name to the set of joined clients.
	// Owned exclusively by the run goroutine.
	members map[string]map[*Client]struct{}

	register   chan registration
	unregister chan *Client
	broadcast  chan envelope

	stop chan struct{}
	wg   sync.WaitGroup

	logger zerolog.Logger
}

// NewHub constructs the hub and starts its run loop.
func NewHub() *Hub {
	h := &Hub{
		members:    make(map[string]map[*Client]struct{}),
		register:   make(chan registration),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, broadcastChannelBuffer),
		stop:       make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "hub").Logger(),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case reg := <-h.register:
			set, ok := h.members[reg.channel]
			if !ok {
				set = make(map[*Client]struct{})
				h.members[reg.channel] = set
			}
			set[reg.client] = struct{}{}

			h.logger.Info().
				Int64("user_id", reg.client.user.ID).
				Str("channel", reg.channel).
				Int("channel_size", len(set)).
				Msg("Client joined channel.")

		case client := <-h.unregister:
			h.remove(client)

		case env := <-h.broadcast:
			for client := range h.members[env.channel] {
				select {
				case client.send <- env.data:
				default:
					h.logger.Warn().
						Int64("user_id", client.user.ID).
						Msg("Client send queue full, dropping connection.")
					h.remove(client)
				}
			}

		case <-h.stop:
			for _, set := range h.members {
				for client := range set {
					client.drop()
				}
			}
			h.members = nil
			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

// remove drops the client from every channel and signals its write pump to
// exit. Called only from the run goroutine.
func (h *Hub) remove(client *Client) {
	found := false
	for channel, set := range h.members {
		if _, ok := set[client]; ok {
			delete(set, client)
			found = true
			if len(set) == 0 {
				delete(h.members, channel)
			}
		}
	}

	if found {
		client.drop()
		h.logger.Info().Int64("user_id", client.user.ID).Msg("Client left.")
	}
}

// Register joins the client to a channel. The registration is processed by
// the run loop; a stopped hub ignores it.
func (h *Hub) Register(client *Client, channel string) {
	select {
	case h.register <- registration{client: client, channel: channel}:
	case <-h.stop:
	}
}

// Unregister removes the client from all channels and stops its write pump.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Broadcast marshals the event once and queues it for every connection in
// the channel, including the sender's. There is no delivery guarantee.
func (h *Hub) Broadcast(channel string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to marshal broadcast event.")
		return
	}

	select {
	case h.broadcast <- envelope{channel: channel, data: data}:
	default:
		h.logger.Warn().Str("channel", channel).Msg("Broadcast queue full, frame dropped.")
	}
}

// Shutdown stops the run loop and drops every client, which in turn
// terminates the write pumps.
func (h *Hub) Shutdown() {
	close(h.stop)
	h.wg.Wait()
	h.logger.Info().Msg("Hub shutdown complete.")
}
