package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/google/uuid"
)

const (
	roomCodeLength  = 6
	minRoomPlayers  = 2
	seedSpace       = 1_000_000
	cleanupInterval = 10 * time.Minute
)

type HubOptions struct {
	Rules         game.Rules
	MaxPlayers    int
	IdleTTL       time.Duration
	SubmitTimeout time.Duration
	Recorder      service.ResultRecorder
	Audit         *service.AuditService
}

func (o HubOptions) withDefaults() HubOptions {
	if o.Rules.HintsPerGame == 0 && o.Rules.TimeBomb.Start == nil {
		o.Rules = game.DefaultRules()
	}
	if o.MaxPlayers < minRoomPlayers {
		o.MaxPlayers = 3
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = time.Hour
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 10 * time.Second
	}
	return o
}

// Hub owns the room registry and routes client frames to rooms
type Hub struct {
	Rooms map[string]*Room
	mu    sync.RWMutex

	opts    HubOptions
	seed    func() int64
	newCode func() string

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

func NewHub(opts HubOptions) *Hub {
	return &Hub{
		Rooms: make(map[string]*Room),
		opts:  opts.withDefaults(),
		seed: func() int64 {
			return rand.Int63n(seedSpace)
		},
		newCode: func() string {
			return strings.ToUpper(uuid.New().String()[:roomCodeLength])
		},
		done: make(chan struct{}),
	}
}

// HandleMessage dispatches one frame read from c
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("malformed ws frame dropped", "user_id", c.UserID, "error", err)
		c.sendError(ErrBadPayload.Error())
		return
	}

	var err error
	switch msg.Type {
	case MsgPing:
		c.send(Message{Type: MsgPong})
	case MsgCreateRoom:
		var p CreateRoomPayload
		if err = decode(msg.Payload, &p); err != nil {
			err = ErrBadPayload
			break
		}
		_, err = h.CreateRoom(c, p)
	case MsgJoinRoom:
		var p JoinRoomPayload
		if err = decode(msg.Payload, &p); err != nil {
			err = ErrBadPayload
			break
		}
		_, err = h.JoinRoom(c, p.RoomCode)
	case MsgLeaveRoom:
		err = h.LeaveRoom(c)
	case MsgPlayerReady, MsgGameAction, MsgGameFinished, MsgChangeMode:
		room := c.Room()
		if room == nil {
			err = ErrNotInRoom
			break
		}
		// the room answers errors itself
		if !room.submit(request{kind: msg.Type, client: c, payload: msg.Payload}) {
			err = ErrRoomClosed
		}
	default:
		logger.Warn("unknown ws message type", "user_id", c.UserID, "type", msg.Type)
		err = ErrBadPayload
	}

	if err != nil {
		c.sendError(err.Error())
	}
}

func (h *Hub) roomSettings(p CreateRoomPayload) (RoomSettings, error) {
	s := RoomSettings{
		Variant:    game.VariantStandard,
		Tier:       game.TierMedium,
		MaxPlayers: h.opts.MaxPlayers,
	}
	if p.GameMode != "" {
		v, ok := game.ParseVariant(p.GameMode)
		if !ok {
			return s, ErrInvalidMode
		}
		s.Variant = v
	}
	if p.Tier != "" {
		t, ok := game.ParseTimeBombTier(p.Tier)
		if !ok {
			return s, ErrInvalidMode
		}
		s.Tier = t
	}
	switch strings.ToLower(p.Difficulty) {
	case "", "easy", "medium", "hard":
		s.Difficulty = game.DifficultyByName(p.Difficulty)
	default:
		return s, ErrInvalidMode
	}
	if p.MaxPlayers > 0 {
		s.MaxPlayers = min(max(p.MaxPlayers, minRoomPlayers), h.opts.MaxPlayers)
	}
	return s, nil
}

// CreateRoom opens a room with c as host. A room c already sits in is left first.
func (h *Hub) CreateRoom(c *Client, p CreateRoomPayload) (*Room, error) {
	settings, err := h.roomSettings(p)
	if err != nil {
		return nil, err
	}
	if c.Room() != nil {
		_ = h.LeaveRoom(c)
	}

	h.mu.Lock()
	code := h.newCode()
	for h.Rooms[code] != nil {
		code = h.newCode()
	}
	room := newRoom(code, h, settings)
	h.Rooms[code] = room
	service.ActiveRooms.Set(float64(len(h.Rooms)))
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		room.Run()
	}()

	if err := h.enter(room, c, MsgCreateRoom); err != nil {
		return nil, err
	}
	return room, nil
}

func (h *Hub) JoinRoom(c *Client, code string) (*Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	h.mu.RLock()
	room := h.Rooms[code]
	h.mu.RUnlock()
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if cur := c.Room(); cur != nil {
		if cur == room {
			return nil, ErrAlreadyInRoom
		}
		_ = h.LeaveRoom(c)
	}

	if err := h.enter(room, c, MsgJoinRoom); err != nil {
		return nil, err
	}
	return room, nil
}

func (h *Hub) enter(room *Room, c *Client, kind string) error {
	if err := h.call(room, request{kind: kind, client: c}); err != nil {
		return err
	}
	c.setRoom(room)
	return nil
}

// call runs req on the room loop and waits for its answer
func (h *Hub) call(room *Room, req request) error {
	req.reply = make(chan error, 1)
	if !room.submit(req) {
		return ErrRoomNotFound
	}
	select {
	case err := <-req.reply:
		return err
	case <-room.done:
		select {
		case err := <-req.reply:
			return err
		default:
			return ErrRoomClosed
		}
	}
}

func (h *Hub) LeaveRoom(c *Client) error {
	room := c.Room()
	if room == nil {
		return ErrNotInRoom
	}
	c.setRoom(nil)
	if err := h.call(room, request{kind: MsgLeaveRoom, client: c}); err != nil && !errors.Is(err, ErrRoomClosed) {
		return err
	}
	return nil
}

// OnDisconnect drops c from its room without waiting for the room loop
func (h *Hub) OnDisconnect(c *Client) {
	room := c.Room()
	if room == nil {
		return
	}
	c.setRoom(nil)
	room.submit(request{kind: reqDisconnect, client: c})
}

func (h *Hub) removeRoom(r *Room) {
	h.mu.Lock()
	if h.Rooms[r.Code] == r {
		delete(h.Rooms, r.Code)
	}
	service.ActiveRooms.Set(float64(len(h.Rooms)))
	h.mu.Unlock()
	logger.Info("room removed", "room", r.Code)
}

func (h *Hub) Room(code string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.Rooms[strings.ToUpper(code)]
	return r, ok
}

// List returns the rooms ordered by code
func (h *Hub) List() []RoomInfo {
	h.mu.RLock()
	out := make([]RoomInfo, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		out = append(out, r.Info())
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (h *Hub) StartCleanup() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case now := <-ticker.C:
				if n := h.expireIdle(now); n > 0 {
					logger.Info("expired idle rooms", "count", n)
				}
			}
		}
	}()
}

func (h *Hub) expireIdle(now time.Time) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, r := range h.Rooms {
		if now.Sub(r.Info().LastActivity) > h.opts.IdleTTL {
			r.expire()
			n++
		}
	}
	return n
}

func (h *Hub) async(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.SubmitTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Close stops every room and waits for pending result submits
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
	})
}
