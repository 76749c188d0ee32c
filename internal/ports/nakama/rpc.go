package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"wolfbot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes returned through runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

// Module exposes the RPC endpoints of the game.
type Module struct {
	deps *Deps
}

func NewModule(deps *Deps) *Module {
	return &Module{deps: deps}
}

// RegisterRPCs registers Nakama RPC endpoints.
func (m *Module) RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcFindGame:          m.RpcFindGame,
		RpcJoinTicket:        m.RpcJoinTicket,
		RpcStasis:            m.RpcStasis,
		RpcNotifySubscribe:   m.RpcNotifySubscribe,
		RpcNotifyUnsubscribe: m.RpcNotifyUnsubscribe,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("register rpc %s: %w", id, err)
		}
	}
	return nil
}

// FindGameResponse is the payload returned to clients looking for a game.
type FindGameResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	Ticket  string `json:"ticket,omitempty"`
}

// RpcFindGame returns a lobby with open seats, creating a match when none exists.
//
// Payload: optional {"mode": "..."} restricting the search to one game mode.
// Returns: FindGameResponse, with a join ticket when tickets are enabled.
func (m *Module) RpcFindGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", codeUnauthenticated)
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", codeInvalidArgument)
		}
	}
	params := map[string]interface{}{}

	// +label.open:>=1 filters on the "open" key in the JSON label.
	query := fmt.Sprintf("+label.%s:%s +label.%s:lobby +label.%s:>=1",
		MatchLabelKey_Game, matchLabelGame, MatchLabelKey_Phase, MatchLabelKey_Open)
	if req.Mode != "" {
		mode, ok := domain.ParseMode(req.Mode)
		if !ok {
			return "", runtime.NewError("Unknown game mode", codeInvalidArgument)
		}
		query += fmt.Sprintf(" +label.%s:%s", MatchLabelKey_Mode, mode)
		params[MatchLabelKey_Mode] = string(mode)
	}

	matches, err := nk.MatchList(ctx, 10, true, "", nil, nil, query)
	if err != nil {
		logger.Error("RpcFindGame [User:%s]: Failed to list matches: %v", userID, err)
		return "", runtime.NewError("Failed to list matches", codeInternal)
	}

	resp := FindGameResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("RpcFindGame [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		// Seat and owner assignment happen in MatchJoin.
		resp.MatchID, err = nk.MatchCreate(ctx, MatchNameWolfbot, params)
		if err != nil {
			logger.Error("RpcFindGame [User:%s]: Failed to create match: %v", userID, err)
			return "", runtime.NewError("Failed to create match", codeInternal)
		}
		resp.IsNew = true
		logger.Info("RpcFindGame [User:%s]: Created new match %s", userID, resp.MatchID)
	}

	if m.deps.Tickets.Enabled() {
		if resp.Ticket, err = m.deps.Tickets.Issue(userID, resp.MatchID); err != nil {
			logger.Error("RpcFindGame [User:%s]: Failed to issue ticket: %v", userID, err)
			return "", runtime.NewError("Internal error", codeInternal)
		}
	}
	return marshalResponse(resp)
}

// RpcJoinTicket issues a join ticket for a match the client already knows.
//
// Payload: {"match_id": "..."}
// Returns: {"ticket": "...", "expires_in": seconds}
func (m *Module) RpcJoinTicket(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", codeUnauthenticated)
	}
	if !m.deps.Tickets.Enabled() {
		return "", runtime.NewError("Join tickets are disabled", codeFailedPrecondition)
	}

	var req struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	if req.MatchID == "" {
		return "", runtime.NewError("Match ID required", codeInvalidArgument)
	}

	ticket, err := m.deps.Tickets.Issue(userID, req.MatchID)
	if err != nil {
		logger.Error("RpcJoinTicket [User:%s]: Failed to issue ticket: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return marshalResponse(map[string]interface{}{
		"ticket":     ticket,
		"expires_in": m.deps.Config.TicketTTLSeconds,
	})
}

// RpcStasis reports the caller's outstanding stasis.
//
// Returns: {"games": n}
func (m *Module) RpcStasis(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", codeUnauthenticated)
	}
	games, err := m.deps.Penalties.GetPenalty(ctx, userID)
	if err != nil {
		logger.Error("RpcStasis [User:%s]: %v", userID, err)
		return "", runtime.NewError("Failed to read stasis", codeInternal)
	}
	return marshalResponse(map[string]int{"games": games})
}

// SubscriptionResponse reports the caller's notification state after a subscribe call.
type SubscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
	Changed    bool `json:"changed"`
}

func (m *Module) RpcNotifySubscribe(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", codeUnauthenticated)
	}
	added, err := m.deps.Subscriptions.Subscribe(ctx, userID)
	if err != nil {
		logger.Error("RpcNotifySubscribe [User:%s]: %v", userID, err)
		return "", runtime.NewError("Failed to subscribe", codeInternal)
	}
	return marshalResponse(SubscriptionResponse{Subscribed: true, Changed: added})
}

func (m *Module) RpcNotifyUnsubscribe(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", codeUnauthenticated)
	}
	removed, err := m.deps.Subscriptions.Unsubscribe(ctx, userID)
	if err != nil {
		logger.Error("RpcNotifyUnsubscribe [User:%s]: %v", userID, err)
		return "", runtime.NewError("Failed to unsubscribe", codeInternal)
	}
	return marshalResponse(SubscriptionResponse{Subscribed: false, Changed: removed})
}

func marshalResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return string(b), nil
}
