package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomInProgress = errors.New("game already in progress")
	ErrRoomClosed     = errors.New("room closed")
	ErrAlreadyInRoom  = errors.New("already in this room")
	ErrNotInRoom      = errors.New("not in a room")
	ErrNotHost        = errors.New("only the host can do that")
	ErrNotPlaying     = errors.New("game not in progress")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrPlayerOut      = errors.New("you are out of this game")
	ErrInvalidMode    = errors.New("invalid game mode")
	ErrBadPayload     = errors.New("malformed payload")
)

const reqDisconnect = "disconnect"

type request struct {
	kind    string
	client  *Client
	payload json.RawMessage
	reply   chan error
}

type member struct {
	client *Client
	domain.Participant
	tiles int
}

// RoomSettings are the rules a room starts its games with
type RoomSettings struct {
	Variant    game.Variant
	Tier       game.TimeBombTier
	Difficulty game.Difficulty
	MaxPlayers int
}

// RoomInfo is the public listing of a room
type RoomInfo struct {
	Code         string            `json:"room_code"`
	Host         string            `json:"host"`
	GameMode     game.Variant      `json:"game_mode"`
	Tier         game.TimeBombTier `json:"timebomb_tier,omitempty"`
	Difficulty   string            `json:"difficulty"`
	Players      int               `json:"players"`
	MaxPlayers   int               `json:"max_players"`
	Status       string            `json:"status"`
	LastActivity time.Time         `json:"-"`
}

// Room is the session authority of one multiplayer game. All of its state
// is owned by the Run goroutine; other goroutines talk to it through inbox.
type Room struct {
	Code string
	hub  *Hub

	settings     RoomSettings
	host         string
	state        string
	members      []*member
	mirror       *game.Session
	turn         string
	seed         int64
	createdAt    time.Time
	lastActivity time.Time

	inbox    chan request
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	infoMu sync.RWMutex
	info   RoomInfo
}

func newRoom(code string, hub *Hub, settings RoomSettings) *Room {
	now := time.Now()
	r := &Room{
		Code:         code,
		hub:          hub,
		settings:     settings,
		state:        StateWaiting,
		createdAt:    now,
		lastActivity: now,
		inbox:        make(chan request, 64),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	r.publishInfo()
	return r
}

// submit hands req to the room loop; false when the room is gone
func (r *Room) submit(req request) bool {
	select {
	case r.inbox <- req:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) expire() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Room) Info() RoomInfo {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.info
}

func (r *Room) publishInfo() {
	info := RoomInfo{
		Code:         r.Code,
		Host:         r.host,
		GameMode:     r.settings.Variant,
		Difficulty:   r.settings.Difficulty.Name,
		Players:      len(r.members),
		MaxPlayers:   r.settings.MaxPlayers,
		Status:       r.state,
		LastActivity: r.lastActivity,
	}
	if r.settings.Variant == game.VariantTimeBomb {
		info.Tier = r.settings.Tier
	}
	r.infoMu.Lock()
	r.info = info
	r.infoMu.Unlock()
}

func (r *Room) Run() {
	defer r.shutdown()

	for {
		select {
		case <-r.hub.done:
			r.closeWith(ErrRoomClosed)
			return
		case <-r.stop:
			logger.Info("room expired", "room", r.Code)
			r.closeWith(ErrRoomClosed)
			return
		case req := <-r.inbox:
			r.lastActivity = time.Now()
			err := r.handle(req)
			if req.reply != nil {
				req.reply <- err
			} else if err != nil && req.client != nil {
				req.client.sendError(err.Error())
			}
			r.publishInfo()

			if len(r.members) == 0 {
				logger.Info("room is empty, closing", "room", r.Code)
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	close(r.done)
	r.hub.removeRoom(r)
}

// closeWith tells the remaining members the room is gone
func (r *Room) closeWith(err error) {
	for _, m := range r.members {
		m.client.sendError(err.Error())
		m.client.setRoom(nil)
	}
}

func (r *Room) handle(req request) error {
	switch req.kind {
	case MsgCreateRoom:
		return r.handleCreate(req.client)
	case MsgJoinRoom:
		return r.handleJoin(req.client)
	case MsgLeaveRoom:
		return r.handleLeave(req.client, true)
	case reqDisconnect:
		return r.handleLeave(req.client, false)
	case MsgPlayerReady:
		return r.handleReady(req.client)
	case MsgGameAction:
		return r.handleAction(req.client, req.payload)
	case MsgGameFinished:
		return r.handleFinished(req.client, req.payload)
	case MsgChangeMode:
		return r.handleChangeMode(req.client, req.payload)
	}
	return ErrBadPayload
}

func (r *Room) member(userID int64) *member {
	for _, m := range r.members {
		if m.client.UserID == userID {
			return m
		}
	}
	return nil
}

func (r *Room) participants() []domain.Participant {
	out := make([]domain.Participant, len(r.members))
	for i, m := range r.members {
		out[i] = m.Participant
	}
	return out
}

func (r *Room) payload() RoomPayload {
	p := RoomPayload{
		RoomCode:   r.Code,
		Host:       r.host,
		GameMode:   r.settings.Variant,
		Difficulty: r.settings.Difficulty,
		MaxPlayers: r.settings.MaxPlayers,
		Status:     r.state,
		Players:    r.participants(),
	}
	if r.settings.Variant == game.VariantTimeBomb {
		p.Tier = r.settings.Tier
	}
	return p
}

func (r *Room) broadcast(msg Message) {
	for _, m := range r.members {
		m.client.send(msg)
	}
}

func (r *Room) broadcastExcept(userID int64, msg Message) {
	for _, m := range r.members {
		if m.client.UserID != userID {
			m.client.send(msg)
		}
	}
}

func (r *Room) seat(c *Client) *member {
	uid := c.UserID
	m := &member{
		client: c,
		Participant: domain.Participant{
			ID:          c.Username,
			UserID:      &uid,
			DisplayName: c.DisplayName,
		},
	}
	r.members = append(r.members, m)
	return m
}

func (r *Room) handleCreate(c *Client) error {
	m := r.seat(c)
	r.host = m.ID

	c.send(Message{Type: MsgRoomCreated, Payload: r.payload()})
	r.audit(m, domain.AuditActionRoomCreate, map[string]interface{}{
		"variant":     r.settings.Variant,
		"difficulty":  r.settings.Difficulty.Name,
		"max_players": r.settings.MaxPlayers,
	})
	logger.Info("room created", "room", r.Code, "host", m.ID, "variant", r.settings.Variant)
	return nil
}

func (r *Room) handleJoin(c *Client) error {
	if r.member(c.UserID) != nil {
		return ErrAlreadyInRoom
	}
	if r.state != StateWaiting {
		return ErrRoomInProgress
	}
	if len(r.members) >= r.settings.MaxPlayers {
		return ErrRoomFull
	}

	m := r.seat(c)
	c.send(Message{Type: MsgRoomJoined, Payload: r.payload()})
	r.broadcastExcept(c.UserID, Message{Type: MsgPlayerJoined, Payload: PlayersPayload{
		Username: m.ID,
		Players:  r.participants(),
	}})
	logger.Info("player joined room", "room", r.Code, "user_id", c.UserID, "players", len(r.members))
	return nil
}

func (r *Room) handleLeave(c *Client, explicit bool) error {
	idx := -1
	for i, m := range r.members {
		if m.client == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	m := r.members[idx]

	// the leaver's turn passes to whoever follows them in join order
	next, passTurn := "", false
	if r.state == StatePlaying && r.settings.Variant == game.VariantLuck && r.turn == m.ID {
		m.Eliminated = true
		next, passTurn = nextTurn(r.participants(), m.ID), true
	}

	r.members = append(r.members[:idx:idx], r.members[idx+1:]...)
	if explicit {
		c.send(Message{Type: MsgLeftRoom})
	}
	if m.ID == r.host && len(r.members) > 0 {
		r.host = r.members[0].ID
	}

	r.broadcast(Message{Type: MsgPlayerLeft, Payload: PlayersPayload{
		Username: m.ID,
		Players:  r.participants(),
	}})
	logger.Info("player left room", "room", r.Code, "user_id", c.UserID, "players", len(r.members))

	if r.state != StatePlaying || len(r.members) == 0 {
		return nil
	}
	if passTurn {
		r.assignTurn(next)
	}
	r.endIfAllFinished()
	return nil
}

func (r *Room) handleReady(c *Client) error {
	m := r.member(c.UserID)
	if m == nil {
		return ErrNotInRoom
	}
	if r.state != StateWaiting {
		return ErrRoomInProgress
	}
	m.Ready = true

	allReady := true
	for _, p := range r.members {
		allReady = allReady && p.Ready
	}
	r.broadcast(Message{Type: MsgReadyUpdate, Payload: PlayersPayload{
		Username: m.ID,
		Players:  r.participants(),
		AllReady: allReady,
	}})

	if allReady {
		return r.startGame()
	}
	return nil
}

func (r *Room) startGame() error {
	ids := make([]string, len(r.members))
	for i, m := range r.members {
		ids[i] = m.ID
		m.Finished, m.Eliminated = false, false
		m.Score, m.ElapsedTime, m.tiles = 0, 0, 0
	}

	initial := ""
	if r.settings.Variant == game.VariantLuck {
		initial = ids[0]
	}

	r.seed = r.hub.seed()
	mirror := game.NewSession(game.Config{
		Mode:       game.ModeMultiplayer,
		Variant:    r.settings.Variant,
		Difficulty: r.settings.Difficulty,
		Tier:       r.settings.Tier,
		Rules:      r.hub.opts.Rules,
	})
	err := mirror.ApplySessionStart(game.SessionStart{
		Seed:         r.seed,
		Variant:      r.settings.Variant,
		Difficulty:   r.settings.Difficulty,
		TimeBombTier: r.settings.Tier,
		InitialTurn:  initial,
		Participants: ids,
	})
	if err != nil {
		return err
	}
	r.mirror = mirror
	r.turn = initial
	r.state = StatePlaying

	start := GameStartPayload{
		BoardSeed:   r.seed,
		GameMode:    r.settings.Variant,
		Difficulty:  r.settings.Difficulty,
		Players:     r.participants(),
		CurrentTurn: initial,
	}
	if r.settings.Variant == game.VariantTimeBomb {
		start.Tier = r.settings.Tier
	}
	r.broadcast(Message{Type: MsgGameStart, Payload: start})

	service.GamesStarted.WithLabelValues(string(r.settings.Variant), string(game.ModeMultiplayer)).Inc()
	r.audit(nil, domain.AuditActionRoomStart, map[string]interface{}{
		"variant": r.settings.Variant,
		"seed":    r.seed,
		"players": ids,
	})
	logger.Info("room game started", "room", r.Code, "variant", r.settings.Variant, "players", len(ids))
	return nil
}

func (r *Room) handleAction(c *Client, raw json.RawMessage) error {
	if r.state != StatePlaying {
		return ErrNotPlaying
	}
	m := r.member(c.UserID)
	if m == nil {
		return ErrNotInRoom
	}
	if m.Finished || m.Eliminated {
		return ErrPlayerOut
	}

	var p GameActionPayload
	if err := decode(raw, &p); err != nil {
		logger.Warn("malformed game action dropped", "room", r.Code, "user_id", c.UserID, "error", err)
		return ErrBadPayload
	}
	kind := game.MoveReveal
	switch p.Action {
	case ActionReveal, ActionEliminated:
	case ActionFlag:
		kind = game.MoveFlag
	default:
		logger.Warn("unknown game action dropped", "room", r.Code, "user_id", c.UserID, "action", p.Action)
		return ErrBadPayload
	}

	move := game.RemoteMove{Participant: m.ID, Kind: kind, Row: p.Row, Col: p.Col, TilesRevealed: p.Tiles, Level: p.Level}
	if err := move.Validate(r.settings.Difficulty); err != nil {
		logger.Warn("malformed game action dropped", "room", r.Code, "user_id", c.UserID, "error", err)
		return ErrBadPayload
	}

	luck := r.settings.Variant == game.VariantLuck
	if luck && kind == game.MoveReveal {
		if r.turn != m.ID || !r.mirror.Turn().Admit(m.ID) {
			return ErrNotYourTurn
		}
	}

	out, err := r.mirror.ApplyRemoteMove(move)
	if err != nil {
		logger.Warn("game action rejected", "room", r.Code, "user_id", c.UserID, "error", err)
		return ErrBadPayload
	}
	if p.Tiles > m.tiles {
		m.tiles = p.Tiles
	}

	r.broadcastExcept(c.UserID, Message{Type: MsgPlayerAction, Payload: PlayerActionPayload{
		Username: m.ID,
		Action:   p.Action,
		Row:      *p.Row,
		Col:      *p.Col,
		Tiles:    p.Tiles,
		Level:    p.Level,
	}})

	if p.Action == ActionEliminated || (luck && out.HitMine) {
		m.Eliminated = true
		r.broadcast(Message{Type: MsgPlayerEliminated, Payload: PlayersPayload{
			Username: m.ID,
			Players:  r.participants(),
		}})
	}
	if luck && kind == game.MoveReveal {
		r.assignTurn(nextTurn(r.participants(), m.ID))
	}
	return nil
}

func (r *Room) handleFinished(c *Client, raw json.RawMessage) error {
	if r.state != StatePlaying {
		return ErrNotPlaying
	}
	m := r.member(c.UserID)
	if m == nil {
		return ErrNotInRoom
	}
	if m.Finished {
		return nil
	}

	var p GameFinishedPayload
	if err := decode(raw, &p); err != nil {
		return ErrBadPayload
	}

	bound := 0
	for _, o := range r.members {
		bound += o.tiles
	}
	score := clampScore(p.Score, bound)
	if score != p.Score {
		logger.Warn("reported score clamped", "room", r.Code, "user_id", c.UserID, "reported", p.Score, "score", score)
	}

	m.Finished = true
	m.Score = score
	m.ElapsedTime = max(p.Time, 0)

	r.broadcast(Message{Type: MsgPlayerFinished, Payload: PlayerFinishedPayload{
		Username: m.ID,
		Score:    m.Score,
		Time:     m.ElapsedTime,
		Players:  r.participants(),
	}})

	if r.settings.Variant == game.VariantLuck && r.turn == m.ID {
		r.assignTurn(nextTurn(r.participants(), m.ID))
	}
	r.endIfAllFinished()
	return nil
}

func (r *Room) handleChangeMode(c *Client, raw json.RawMessage) error {
	m := r.member(c.UserID)
	if m == nil {
		return ErrNotInRoom
	}
	if m.ID != r.host {
		return ErrNotHost
	}
	if r.state != StateWaiting {
		return ErrRoomInProgress
	}

	var p ChangeModePayload
	if err := decode(raw, &p); err != nil {
		return ErrBadPayload
	}
	variant, ok := game.ParseVariant(p.GameMode)
	if !ok {
		return ErrInvalidMode
	}
	tier := r.settings.Tier
	if p.Tier != "" {
		if tier, ok = game.ParseTimeBombTier(p.Tier); !ok {
			return ErrInvalidMode
		}
	}

	r.settings.Variant = variant
	r.settings.Tier = tier
	r.broadcast(Message{Type: MsgModeChanged, Payload: r.payload()})
	logger.Info("room mode changed", "room", r.Code, "variant", variant)
	return nil
}

func (r *Room) assignTurn(next string) {
	r.turn = next
	if err := r.mirror.ApplyTurnAssigned(game.TurnAssigned{Participant: next}); err != nil {
		logger.Warn("turn assignment rejected", "room", r.Code, "participant", next, "error", err)
	}
	r.broadcast(Message{Type: MsgTurnChanged, Payload: TurnChangedPayload{CurrentTurn: next}})
}

func (r *Room) endIfAllFinished() {
	for _, m := range r.members {
		if !m.Finished {
			return
		}
	}
	r.endGame()
}

func (r *Room) endGame() {
	ranked := rankMembers(r.members)
	results := make([]game.ParticipantResult, len(ranked))
	for i, m := range ranked {
		results[i] = game.ParticipantResult{
			Participant: m.ID,
			DisplayName: m.DisplayName,
			Score:       m.Score,
			ElapsedTime: m.ElapsedTime,
			Finished:    m.Finished,
		}
	}

	if err := r.mirror.ApplySessionEnded(game.SessionEnded{Results: results}); err != nil {
		logger.Warn("session end rejected", "room", r.Code, "error", err)
	}
	r.broadcast(Message{Type: MsgGameEnded, Payload: GameEndedPayload{Results: results}})

	code := r.Code
	for i, m := range ranked {
		res := game.Result{
			Participant:   m.ID,
			Mode:          game.ModeMultiplayer,
			Variant:       r.settings.Variant,
			Difficulty:    r.settings.Difficulty.Name,
			Score:         m.Score,
			ElapsedTime:   m.ElapsedTime,
			TilesRevealed: m.tiles,
			Won:           i == 0 && !m.Eliminated,
		}
		service.GamesFinished.WithLabelValues(string(res.Variant), string(res.Mode), service.OutcomeLabel(res.Won)).Inc()

		if r.hub.opts.Recorder == nil {
			continue
		}
		rec := service.SubmitRecord{UserID: m.UserID, Username: m.DisplayName, RoomCode: &code, Result: res}
		r.hub.async(func(ctx context.Context) {
			if err := r.hub.opts.Recorder.Submit(ctx, rec); err != nil {
				logger.Error("failed to submit room result", "error", err, "room", code, "participant", rec.Result.Participant)
			}
		})
	}

	r.audit(nil, domain.AuditActionRoomEnd, map[string]interface{}{
		"variant": r.settings.Variant,
		"results": results,
	})
	logger.Info("room game ended", "room", r.Code, "variant", r.settings.Variant, "winner", results[0].Participant)

	r.state = StateWaiting
	r.mirror = nil
	r.turn = ""
	for _, m := range r.members {
		m.Ready, m.Finished, m.Eliminated = false, false, false
		m.Score, m.ElapsedTime, m.tiles = 0, 0, 0
	}
}

func (r *Room) audit(m *member, action string, details map[string]interface{}) {
	if r.hub.opts.Audit == nil {
		return
	}
	var userID *int64
	if m != nil {
		userID = m.UserID
	}
	code := r.Code
	r.hub.async(func(ctx context.Context) {
		r.hub.opts.Audit.LogRoom(ctx, userID, action, code, details)
	})
}

// nextTurn picks the first active participant after current in join order.
// current itself is considered last; empty when nobody can move.
func nextTurn(players []domain.Participant, current string) string {
	idx := -1
	for i, p := range players {
		if p.ID == current {
			idx = i
			break
		}
	}
	n := len(players)
	for step := 1; step <= n; step++ {
		p := players[(idx+step+n)%n]
		if !p.Finished && !p.Eliminated {
			return p.ID
		}
	}
	return ""
}

// rankMembers orders by score, then time; ties keep join order
func rankMembers(members []*member) []*member {
	ranked := append([]*member(nil), members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ElapsedTime < ranked[j].ElapsedTime
	})
	return ranked
}

func clampScore(score, bound int) int {
	if score < 0 {
		return 0
	}
	if score > bound {
		return bound
	}
	return score
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
