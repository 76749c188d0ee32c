package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"wolfbot/internal/app"
	"wolfbot/internal/bot"
	"wolfbot/internal/config"
	"wolfbot/internal/domain"
	"wolfbot/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/structpb"
)

// Deps are the collaborators shared by every match and RPC of the module.
type Deps struct {
	Config        config.GameConfig
	Penalties     ports.PenaltyPort
	Subscriptions ports.SubscriptionPort
	Notifier      ports.NotifierPort
	Tickets       *app.TicketService
	Roster        *bot.Roster
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
// One match hosts one session at a time; a finished game is replaced by a
// fresh lobby for the players still connected.
type MatchState struct {
	MatchID string
	Tick    int64
	Config  config.GameConfig

	Session   *domain.Session
	Service   *app.Service
	Scheduler *app.Scheduler

	Presences map[string]runtime.Presence // user id -> presence for targeted messaging
	Players   map[string]domain.PlayerID  // user id -> seat in the current session
	Users     map[domain.PlayerID]string  // seat -> user id
	Owner     string                      // user id allowed to start and force-end phases
	Bots      map[domain.PlayerID]*bot.Agent

	LastShortTick int64  // tick when a human started waiting in a short lobby
	BotWaitUntil  int64  // tick when bots act in the current phase
	EndedTick     int64  // tick when the last game ended
	botPhase      string // phase the bot delay was drawn for
	announced     bool   // subscribers were told about this lobby

	deps *Deps
	rng  *rand.Rand
}

func newMatchState(matchID string, cfg config.GameConfig, deps *Deps, seed int64) *MatchState {
	ms := &MatchState{
		MatchID:   matchID,
		Config:    cfg,
		Presences: make(map[string]runtime.Presence),
		deps:      deps,
		rng:       rand.New(rand.NewSource(seed)),
	}
	ms.openLobby()
	return ms
}

// openLobby replaces the session with an empty lobby.
func (ms *MatchState) openLobby() {
	if ms.Scheduler != nil {
		ms.Scheduler.Stop()
	}
	ms.Session = domain.NewSession(uuid.NewString())
	ms.Session.Mode = ms.Config.GameMode()
	ms.Service = app.NewService(ms.rng,
		app.WithRevealRoles(ms.Config.RevealRoles),
		app.WithPlayerLimits(ms.Config.MinPlayers, ms.Config.MaxPlayers),
	)
	ms.Scheduler = app.NewScheduler(ms.Service, app.NewPhaseTimer(), app.Durations{
		Day:   ms.Config.DayDuration(),
		Night: ms.Config.NightDuration(),
	})
	ms.Players = make(map[string]domain.PlayerID)
	ms.Users = make(map[domain.PlayerID]string)
	ms.Bots = make(map[domain.PlayerID]*bot.Agent)
	ms.LastShortTick, ms.BotWaitUntil, ms.EndedTick = 0, 0, 0
	ms.botPhase = ""
	ms.announced = false
}

func (ms *MatchState) seat(userID string, id domain.PlayerID) {
	ms.Players[userID] = id
	ms.Users[id] = userID
}

func (ms *MatchState) unseat(userID string) {
	if id, ok := ms.Players[userID]; ok {
		delete(ms.Users, id)
		delete(ms.Bots, id)
	}
	delete(ms.Players, userID)
}

func (ms *MatchState) isBot(userID string) bool {
	id, ok := ms.Players[userID]
	if !ok {
		return false
	}
	_, isBot := ms.Bots[id]
	return isBot
}

// GetHumanPlayerCount returns the number of seated humans.
func (ms *MatchState) GetHumanPlayerCount() int {
	return len(ms.Players) - len(ms.Bots)
}

// GetOpenSeatsCount returns how many humans can still join. Bots in the lobby
// give up their seat to a joining human.
func (ms *MatchState) GetOpenSeatsCount() int {
	if ms.Session.Phase != domain.PhaseLobby {
		return 0
	}
	open := ms.Service.MaxPlayers() - ms.GetHumanPlayerCount()
	if open < 0 {
		return 0
	}
	return open
}

// ensureOwner keeps the owner on a connected human, picking the earliest
// seated one when the owner is gone.
func (ms *MatchState) ensureOwner() {
	if _, present := ms.Presences[ms.Owner]; present {
		if _, seated := ms.Players[ms.Owner]; seated {
			return
		}
	}
	ms.Owner = ""
	for _, id := range ms.Session.Order {
		userID := ms.Users[id]
		if _, present := ms.Presences[userID]; present && !ms.isBot(userID) {
			ms.Owner = userID
			return
		}
	}
}

func (ms *MatchState) nextBotIdentity() bot.Identity {
	if r := ms.deps.Roster; r != nil {
		for i := 0; i < r.Len(); i++ {
			identity := r.Identity(i)
			if _, taken := ms.Players[identity.UserID]; identity.UserID != "" && !taken {
				return identity
			}
		}
	}
	short := uuid.NewString()[:8]
	return bot.Identity{UserID: "bot-" + short, Username: "bot_" + short, DisplayName: "Bot " + short}
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(deps *Deps) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{deps: deps}, nil
	}
}

type matchHandler struct {
	deps *Deps
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := mh.deps.Config
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		overlaid, err := config.WithEnv(cfg, env)
		if err != nil {
			logger.Warn("MatchInit: Ignoring runtime env overrides: %v", err)
		} else {
			cfg = overlaid
		}
	}
	if name, ok := params[MatchLabelKey_Mode].(string); ok {
		if _, valid := domain.ParseMode(name); valid {
			cfg.Mode = name
		} else {
			logger.Warn("MatchInit: Ignoring unknown mode %q", name)
		}
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := newMatchState(matchID, cfg, mh.deps, time.Now().UnixNano())
	label, err := state.label()
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, cfg.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	ms, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	if _, seated := ms.Players[userID]; seated {
		return ms, true, ""
	}
	if mh.deps.Roster != nil && mh.deps.Roster.IsBot(userID) {
		return ms, false, "Bot accounts cannot join"
	}
	if ms.Session.Phase != domain.PhaseLobby {
		return ms, false, "Game in progress"
	}
	if ms.GetOpenSeatsCount() <= 0 {
		return ms, false, "Match full"
	}
	if mh.deps.Tickets.Enabled() {
		if err := mh.deps.Tickets.Verify(metadata[JoinMetadataTicket], userID, ms.MatchID); err != nil {
			logger.Warn("MatchJoinAttempt: Rejected ticket from %s: %v", userID, err)
			return ms, false, "Invalid join ticket"
		}
	}
	if mh.deps.Penalties != nil {
		games, err := mh.deps.Penalties.GetPenalty(ctx, userID)
		if err != nil {
			logger.Warn("MatchJoinAttempt: Could not read stasis for %s: %v", userID, err)
		} else if games > 0 {
			return ms, false, fmt.Sprintf("In stasis for %d more game(s)", games)
		}
	}
	return ms, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		ms.Presences[userID] = p
		if _, seated := ms.Players[userID]; seated {
			logger.Debug("MatchJoin: User %s reconnected.", userID)
			continue
		}
		if ms.Session.Phase != domain.PhaseLobby {
			logger.Warn("MatchJoin: User %s joined outside the lobby and was not seated.", userID)
			continue
		}
		if len(ms.Session.Players) >= ms.Service.MaxPlayers() {
			mh.dropBot(ctx, ms, dispatcher, logger)
		}

		id, events, err := ms.Service.Join(ms.Session, p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not be seated: %v", userID, err)
			continue
		}
		ms.seat(userID, id)
		mh.broadcastEvents(ctx, ms, dispatcher, logger, events)

		if !ms.announced {
			mh.announceLobby(ctx, ms, logger, p)
		}
	}

	ms.ensureOwner()
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastMatchState(ms, dispatcher, logger)
	return ms
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(ms.Presences, userID)
		id, seated := ms.Players[userID]
		if !seated {
			continue
		}

		switch ms.Session.Phase {
		case domain.PhaseLobby:
			events, err := ms.Service.Leave(ms.Session, id)
			if err != nil {
				logger.Warn("MatchLeave: Failed to free seat %d: %v", id, err)
			}
			ms.unseat(userID)
			mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
		case domain.PhaseNight, domain.PhaseDay:
			fled := ms.Session.IsAlive(id)
			events, err := ms.Service.Leave(ms.Session, id)
			if err != nil {
				logger.Warn("MatchLeave: Failed to remove player %d: %v", id, err)
				continue
			}
			mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
			if fled {
				mh.penalize(ctx, ms, logger, userID)
			}
		}
	}

	if len(ms.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		ms.Scheduler.Stop()
		return nil
	}

	ms.ensureOwner()
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastMatchState(ms, dispatcher, logger)
	return ms
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		return state
	}
	ms.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, ms, dispatcher, logger, msg)
		case OpVote:
			mh.handleVote(ctx, ms, dispatcher, logger, msg)
		case OpNightAction:
			mh.handleNightAction(ctx, ms, dispatcher, logger, msg)
		case OpDayAction:
			mh.handleDayAction(ctx, ms, dispatcher, logger, msg)
		case OpForceEnd:
			mh.handleForceEnd(ctx, ms, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if ms.Config.BotsEnabled {
		mh.processBots(ctx, ms, dispatcher, logger)
	}
	mh.advance(ctx, ms, dispatcher, logger)
	return ms
}

// advance lets the scheduler resolve due phases and reopens the lobby once
// a finished game has been on display long enough.
func (mh *matchHandler) advance(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	switch ms.Session.Phase {
	case domain.PhaseNight, domain.PhaseDay:
		events, err := ms.Scheduler.Tick(ms.Session)
		mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
		if err != nil {
			logger.Error("MatchLoop: %s %d held for retry: %v", ms.Session.Phase, ms.Session.DayCount, err)
		}
	case domain.PhaseEnded:
		if ms.Tick-ms.EndedTick >= ms.Config.Ticks(ms.Config.LobbyResetSeconds) {
			mh.resetLobby(ctx, ms, dispatcher, logger)
		}
	}
}

// resetLobby opens a new lobby and seats every connected human in their old order.
func (mh *matchHandler) resetLobby(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var humans []runtime.Presence
	for _, id := range ms.Session.Order {
		if p, ok := ms.Presences[ms.Users[id]]; ok && !ms.isBot(ms.Users[id]) {
			humans = append(humans, p)
		}
	}

	previous := ms.Session.ID
	ms.openLobby()
	for _, p := range humans {
		id, events, err := ms.Service.Join(ms.Session, p.GetUsername())
		if err != nil {
			logger.Warn("ResetLobby: Could not reseat %s: %v", p.GetUserId(), err)
			continue
		}
		ms.seat(p.GetUserId(), id)
		mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
	}
	logger.Info("ResetLobby: Session %s replaced by lobby %s with %d players.", previous, ms.Session.ID, len(humans))

	ms.ensureOwner()
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastMatchState(ms, dispatcher, logger)
}

func (mh *matchHandler) announceLobby(ctx context.Context, ms *MatchState, logger runtime.Logger, host runtime.Presence) {
	ms.announced = true
	if mh.deps.Subscriptions == nil || mh.deps.Notifier == nil {
		return
	}
	subscribers, err := mh.deps.Subscriptions.Subscribers(ctx)
	if err != nil {
		logger.Warn("MatchJoin: Could not load subscribers: %v", err)
		return
	}
	recipients := make([]string, 0, len(subscribers))
	for _, userID := range subscribers {
		if userID != host.GetUserId() {
			recipients = append(recipients, userID)
		}
	}
	mh.deps.Notifier.Notify(ctx, ports.Notification{
		Subject: "A new game is forming",
		Code:    NotifyCodeGameOpen,
		Content: map[string]interface{}{
			"match_id": ms.MatchID,
			"host":     host.GetUsername(),
		},
		Recipients: recipients,
	})
}

func (mh *matchHandler) penalize(ctx context.Context, ms *MatchState, logger runtime.Logger, userID string) {
	if mh.deps.Penalties == nil || ms.Config.LeavePenalty <= 0 {
		return
	}
	total, err := mh.deps.Penalties.AddPenalty(ctx, userID, ms.Config.LeavePenalty)
	if err != nil {
		logger.Error("MatchLeave: Failed to add stasis for %s: %v", userID, err)
		return
	}
	logger.Info("MatchLeave: User %s left a running game and sits out %d game(s).", userID, total)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	logger.Info("StartGame: Request received from %s (owner=%s, seated=%d)", senderID, ms.Owner, len(ms.Session.Players))

	req, err := decodeMessage(msg.GetData())
	if err != nil {
		logger.Warn("StartGame: Invalid request from %s: %v", senderID, err)
		return
	}
	if senderID != ms.Owner {
		logger.Warn("StartGame: User %s tried to start game but is not owner", senderID)
		mh.sendError(ms, dispatcher, logger, senderID, errNotOwner)
		return
	}
	if name := stringField(req, "mode"); name != "" && ms.Session.Phase == domain.PhaseLobby {
		mode, ok := domain.ParseMode(name)
		if !ok {
			mh.sendError(ms, dispatcher, logger, senderID, invalidRequest(fmt.Errorf("unknown mode %q", name)))
			return
		}
		ms.Session.Mode = mode
	}

	events, err := ms.Scheduler.Begin(ms.Session)
	if err != nil {
		logger.Warn("StartGame: Cannot start: %v", err)
		mh.sendError(ms, dispatcher, logger, senderID, err)
		return
	}

	if mh.deps.Penalties != nil {
		served, err := mh.deps.Penalties.ServePenalties(ctx)
		if err != nil {
			logger.Error("StartGame: Failed to serve stasis: %v", err)
		} else if served > 0 {
			logger.Debug("StartGame: Served one game of stasis for %d users.", served)
		}
	}

	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
	logger.Info("StartGame: Session %s started with %d players in %s mode.", ms.Session.ID, len(ms.Session.Players), ms.Session.Mode)
}

func (mh *matchHandler) handleVote(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	voter, req, ok := mh.seatedRequest(ms, dispatcher, logger, msg)
	if !ok {
		return
	}

	abstain := boolField(req, "abstain")
	target := domain.NoPlayer
	if !abstain {
		var err error
		if target, err = playerField(req, "target"); err != nil {
			mh.sendError(ms, dispatcher, logger, senderID, invalidRequest(err))
			return
		}
	}

	events, err := ms.Service.SubmitVote(ms.Session, voter, target, abstain)
	if err != nil {
		logger.Debug("handleVote: User %s (player %d) vote rejected: %v", senderID, voter, err)
		mh.sendError(ms, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
}

func (mh *matchHandler) handleNightAction(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	actor, req, ok := mh.seatedRequest(ms, dispatcher, logger, msg)
	if !ok {
		return
	}

	kind := domain.ActionKind(stringField(req, "kind"))
	target := domain.NoPlayer
	if kind != domain.ActionPass {
		var err error
		if target, err = playerField(req, "target"); err != nil {
			mh.sendError(ms, dispatcher, logger, senderID, invalidRequest(err))
			return
		}
	}

	events, err := ms.Service.SubmitNightAction(ms.Session, actor, kind, target, stringMapField(req, "payload"))
	if err != nil {
		logger.Debug("handleNightAction: User %s (player %d) %s rejected: %v", senderID, actor, kind, err)
		mh.sendError(ms, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
}

func (mh *matchHandler) handleDayAction(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	actor, req, ok := mh.seatedRequest(ms, dispatcher, logger, msg)
	if !ok {
		return
	}

	kind := domain.ActionKind(stringField(req, "kind"))
	target := domain.NoPlayer
	if kind != domain.ActionReveal {
		var err error
		if target, err = playerField(req, "target"); err != nil {
			mh.sendError(ms, dispatcher, logger, senderID, invalidRequest(err))
			return
		}
	}

	events, err := ms.Service.SubmitDayAction(ms.Session, actor, kind, target)
	if err != nil {
		logger.Debug("handleDayAction: User %s (player %d) %s rejected: %v", senderID, actor, kind, err)
		mh.sendError(ms, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
}

func (mh *matchHandler) handleForceEnd(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != ms.Owner {
		logger.Warn("ForceEnd: User %s is not owner", senderID)
		mh.sendError(ms, dispatcher, logger, senderID, errNotOwner)
		return
	}
	events, err := ms.Scheduler.ForceEnd(ms.Session)
	mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
	if err != nil {
		logger.Warn("ForceEnd: %v", err)
		mh.sendError(ms, dispatcher, logger, senderID, err)
		return
	}
	logger.Info("ForceEnd: Phase ended early by %s.", senderID)
}

// seatedRequest resolves the sender's seat and decodes the message body.
func (mh *matchHandler) seatedRequest(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) (domain.PlayerID, *structpb.Struct, bool) {
	senderID := msg.GetUserId()
	id, seated := ms.Players[senderID]
	if !seated {
		logger.Warn("MatchLoop: Message %d from unseated user %s", msg.GetOpCode(), senderID)
		mh.sendError(ms, dispatcher, logger, senderID, app.ErrUnknownPlayer)
		return domain.NoPlayer, nil, false
	}
	req, err := decodeMessage(msg.GetData())
	if err != nil {
		logger.Warn("MatchLoop: Invalid payload for op %d from %s: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(ms, dispatcher, logger, senderID, invalidRequest(err))
		return domain.NoPlayer, nil, false
	}
	return id, req, true
}

func (mh *matchHandler) processBots(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	switch ms.Session.Phase {
	case domain.PhaseLobby:
		mh.fillLobby(ctx, ms, dispatcher, logger)
	case domain.PhaseNight, domain.PhaseDay:
		mh.playBots(ctx, ms, dispatcher, logger)
	}
}

// fillLobby seats bots up to the minimum once a human has waited long enough.
func (mh *matchHandler) fillLobby(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if ms.GetHumanPlayerCount() == 0 || len(ms.Session.Players) >= ms.Service.MinPlayers() {
		ms.LastShortTick = 0
		return
	}
	if ms.LastShortTick == 0 {
		ms.LastShortTick = ms.Tick
		logger.Debug("processBots: Short lobby detected, starting auto-fill timer.")
		return
	}
	if ms.Tick-ms.LastShortTick < ms.Config.Ticks(ms.Config.BotFillSeconds) {
		return
	}

	for len(ms.Session.Players) < ms.Service.MinPlayers() {
		if !mh.addBot(ctx, ms, dispatcher, logger) {
			break
		}
	}
	ms.LastShortTick = 0
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastMatchState(ms, dispatcher, logger)
}

func (mh *matchHandler) addBot(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	identity := ms.nextBotIdentity()
	id, events, err := ms.Service.Join(ms.Session, identity.DisplayName)
	if err != nil {
		logger.Warn("processBots: Could not seat bot %s: %v", identity.Username, err)
		return false
	}

	name := identity.Level
	if name == "" {
		name = ms.Config.BotLevel
	}
	level, err := bot.ParseLevel(name)
	if err != nil {
		logger.Warn("processBots: %v, using %s", err, level)
	}
	brain, err := bot.NewBrain(level, rand.New(rand.NewSource(ms.rng.Int63())))
	if err != nil {
		logger.Error("Failed to create bot agent for %s: %v", identity.UserID, err)
		_, _ = ms.Service.Leave(ms.Session, id)
		return false
	}

	ms.seat(identity.UserID, id)
	ms.Bots[id] = &bot.Agent{ID: id, UserID: identity.UserID, Name: identity.DisplayName, Brain: brain}
	mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
	logger.Info("processBots: Added bot %s (%s) as player %d", identity.Username, identity.UserID, id)
	return true
}

// dropBot frees the most recently seated bot for a joining human.
func (mh *matchHandler) dropBot(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for i := len(ms.Session.Order) - 1; i >= 0; i-- {
		id := ms.Session.Order[i]
		agent, ok := ms.Bots[id]
		if !ok {
			continue
		}
		events, err := ms.Service.Leave(ms.Session, id)
		if err != nil {
			logger.Warn("MatchJoin: Failed to remove bot %d: %v", id, err)
			return
		}
		ms.unseat(agent.UserID)
		mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
		logger.Info("MatchJoin: Replacing bot %s with a human.", agent.UserID)
		return
	}
}

// playBots lets every bot act once per phase after a random delay.
func (mh *matchHandler) playBots(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if len(ms.Bots) == 0 {
		return
	}
	phase := fmt.Sprintf("%s-%d-%d", ms.Session.Phase, ms.Session.DayCount, ms.Session.NightCount)
	if phase != ms.botPhase {
		ms.botPhase = phase
		delay := 0
		if ms.Config.BotDelaySeconds > 0 {
			delay = 1 + ms.rng.Intn(ms.Config.BotDelaySeconds)
		}
		ms.BotWaitUntil = ms.Tick + ms.Config.Ticks(delay)
		logger.Debug("processBots: Bots will act at tick %d (current %d)", ms.BotWaitUntil, ms.Tick)
	}
	if ms.Tick < ms.BotWaitUntil {
		return
	}

	for _, id := range ms.Session.Order {
		agent, ok := ms.Bots[id]
		if !ok {
			continue
		}
		events, err := agent.Act(ms.Service, ms.Session)
		if err != nil {
			logger.Warn("processBots: Bot %s failed to act: %v", agent.UserID, err)
		}
		mh.broadcastEvents(ctx, ms, dispatcher, logger, events)
	}
}

// broadcastEvents dispatches engine events to the connected players they are
// addressed to and lets the bots observe them.
func (mh *matchHandler) broadcastEvents(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		opCode, data, err := encodeEvent(ev)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if ev.Private() {
			for _, id := range ev.Recipients {
				if p, ok := ms.Presences[ms.Users[id]]; ok {
					recipients = append(recipients, p)
				}
			}
			// Private events nobody connected may read (e.g. addressed to bots) are dropped.
			if len(recipients) == 0 {
				continue
			}
		}
		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Warn("Failed to broadcast %v: %v", ev.Kind, err)
		}

		if ev.Kind == app.EventGameEnded {
			ms.EndedTick = ms.Tick
			if p, ok := ev.Payload.(app.GameEndedPayload); ok {
				logger.Info("GameEnded: Session %s won by %s (%s).", ms.Session.ID, p.Outcome.Faction, p.Outcome.Reason)
			}
			mh.updateLabel(ms, dispatcher, logger)
		}
	}
	for _, agent := range ms.Bots {
		agent.Observe(events)
	}
}

func (mh *matchHandler) broadcastMatchState(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]interface{}, 0, len(ms.Session.Order))
	for _, id := range ms.Session.Order {
		p := ms.Session.Players[id]
		userID := ms.Users[id]
		_, connected := ms.Presences[userID]
		players = append(players, map[string]interface{}{
			"player":    pid(id),
			"user_id":   userID,
			"name":      p.Name,
			"alive":     p.Alive,
			"bot":       ms.isBot(userID),
			"owner":     userID == ms.Owner,
			"connected": connected,
		})
	}
	data, err := marshalStruct(map[string]interface{}{
		"session_id": ms.Session.ID,
		"phase":      string(ms.Session.Phase),
		"day":        ms.Session.DayCount,
		"night":      ms.Session.NightCount,
		"tick":       ms.Tick,
		"players":    players,
	})
	if err != nil {
		logger.Error("Failed to marshal match state: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true); err != nil {
		logger.Warn("Failed to broadcast match state: %v", err)
	}
}

var errNotOwner = errors.New("only the match owner can do that")

type requestError struct{ err error }

func (e requestError) Error() string { return "invalid request: " + e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func invalidRequest(err error) error { return requestError{err: err} }

// errorCode maps an error to the code and kind sent to clients.
func errorCode(err error) (int, string) {
	var rej *app.Rejection
	var bad requestError
	switch {
	case errors.As(err, &rej):
		return 400, string(rej.Kind)
	case errors.As(err, &bad):
		return 400, "invalid_request"
	case errors.Is(err, errNotOwner):
		return 403, "not_owner"
	case errors.Is(err, app.ErrUnknownPlayer):
		return 404, "not_seated"
	case errors.Is(err, app.ErrTooFewPlayers), errors.Is(err, app.ErrNotInLobby), errors.Is(err, app.ErrGameEnded):
		return 409, "conflict"
	}
	return 500, "internal"
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	code, kind := errorCode(err)
	data, mErr := marshalStruct(map[string]interface{}{
		"code":    code,
		"kind":    kind,
		"message": err.Error(),
	})
	if mErr != nil {
		logger.Error("Failed to marshal game error: %v", mErr)
		return
	}

	presence, ok := ms.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("Failed to send error to %s: %v", userID, err)
	}
}

func (ms *MatchState) label() (string, error) {
	data, err := marshalStruct(map[string]interface{}{
		MatchLabelKey_Game:  matchLabelGame,
		MatchLabelKey_Phase: string(ms.Session.Phase),
		MatchLabelKey_Open:  ms.GetOpenSeatsCount(),
		MatchLabelKey_Mode:  string(ms.Session.Mode),
		"players":           len(ms.Session.Players),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := ms.label()
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	if ms, ok := state.(*MatchState); ok {
		ms.Scheduler.Stop()
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
