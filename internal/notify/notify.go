// Package notify fans out episode-broadcast notifications over UDP.
// Clients (desktop notifier scripts, status bars) register themselves with
// a small JSON datagram and receive one datagram per airing episode of a
// show on their watch list.
package notify

import (
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	RegisterMessageType   = "register"
	NewEpisodeMessageType = "new_episode"
)

// RegisterMessage is sent by a client to subscribe to notifications.
type RegisterMessage struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
}

// NewEpisodeMessage announces that a watched show broadcasts today.
type NewEpisodeMessage struct {
	Type      string `json:"type"`
	MALID     int    `json:"mal_id"`
	Title     string `json:"title"`
	Broadcast string `json:"broadcast,omitempty"` // e.g. "Mondays at 01:05 (JST)"
	Streaming string `json:"streaming,omitempty"` // first known streaming service
}

// Client is one registered notification receiver.
type Client struct {
	UserID uint
	Addr   *net.UDPAddr
}

// Registry tracks registered clients by user id. One address per user;
// re-registering replaces the previous address.
type Registry struct {
	mu      sync.RWMutex
	clients map[uint]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[uint]Client)}
}

func (r *Registry) Register(userID uint, addr *net.UDPAddr) {
	if userID == 0 || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID uint) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

// Lookup returns the registered client for userID, if any.
func (r *Registry) Lookup(userID uint) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[userID]
	return client, ok
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Server listens for register datagrams and pushes episode notifications.
type Server struct {
	addr     string
	registry *Registry
	log      *logrus.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, registry *Registry, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{addr: addr, registry: registry, log: log}
}

// Run listens for registration datagrams until the socket is closed.
func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.log.Infof("notify: UDP server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			// Close releases the socket; the resulting read error is the
			// normal shutdown path, not a failure.
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.log.Warnf("notify: invalid datagram from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.UserID, addr)
		s.log.Infof("notify: registered client for user %d (%s)", msg.UserID, addr)
	}
}

// Close shuts the listening socket down, unblocking Run.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// NotifyEpisode sends the episode announcement to every given user that has
// a registered client. Unreachable clients are retried once, then dropped
// from the registry.
func (s *Server) NotifyEpisode(msg NewEpisodeMessage, userIDs []uint) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.log.Warn("notify: server not running, dropping notification")
		return
	}

	msg.Type = NewEpisodeMessageType
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Errorf("notify: failed to marshal notification: %v", err)
		return
	}

	for _, userID := range userIDs {
		client, ok := s.registry.Lookup(userID)
		if !ok {
			continue
		}
		s.sendWithRetry(conn, client, payload)
	}
}

func (s *Server) sendWithRetry(conn *net.UDPConn, client Client, payload []byte) {
	if err := sendOnce(conn, client, payload); err == nil {
		return
	}
	if err := sendOnce(conn, client, payload); err != nil {
		s.log.Warnf("notify: failed to reach user %d at %s: %v", client.UserID, client.Addr, err)
		s.registry.Remove(client.UserID)
	}
}

func sendOnce(conn *net.UDPConn, client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.UserID == 0 || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
