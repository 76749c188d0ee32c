package nakama

import (
	"fmt"
	"strconv"
	"time"

	"wolfbot/internal/app"
	"wolfbot/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerJoined:        OpPlayerJoined,
	app.EventPlayerLeft:          OpPlayerLeft,
	app.EventGameStarted:         OpGameStarted,
	app.EventRoleAssigned:        OpRoleAssigned,
	app.EventPhaseStarted:        OpPhaseStarted,
	app.EventPhaseEnded:          OpPhaseEnded,
	app.EventDeathReported:       OpDeathReported,
	app.EventInvestigationResult: OpInvestigationResult,
	app.EventTotemDrawn:          OpTotemDrawn,
	app.EventTotemReceived:       OpTotemReceived,
	app.EventVoteRecorded:        OpVoteRecorded,
	app.EventActionRecorded:      OpActionRecorded,
	app.EventActionResolved:      OpActionResolved,
	app.EventShotFired:           OpShotFired,
	app.EventRoleRevealed:        OpRoleRevealed,
	app.EventGameEnded:           OpGameEnded,
}

// encodeEvent returns the op code and wire payload of an engine event.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	content, err := eventContent(ev)
	if err != nil {
		return 0, nil, err
	}
	data, err := marshalStruct(content)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

func marshalStruct(content map[string]interface{}) ([]byte, error) {
	msg, err := structpb.NewStruct(content)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(msg)
}

// decodeMessage parses a client message. An empty body is an empty struct.
func decodeMessage(data []byte) (*structpb.Struct, error) {
	msg := &structpb.Struct{}
	if len(data) == 0 {
		return msg, nil
	}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func eventContent(ev app.Event) (map[string]interface{}, error) {
	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		return map[string]interface{}{"player": pid(p.Player), "name": p.Name}, nil
	case app.PlayerLeftPayload:
		return map[string]interface{}{"player": pid(p.Player), "in_game": p.InGame}, nil
	case app.GameStartedPayload:
		return map[string]interface{}{"session_id": p.SessionID, "players": p.Players, "mode": string(p.Mode), "fallback": p.Fallback}, nil
	case app.RoleAssignedPayload:
		return map[string]interface{}{
			"player":    pid(p.Player),
			"role":      string(p.Role),
			"templates": stringList(p.Templates),
			"teammates": pidList(p.Teammates),
		}, nil
	case app.PhaseStartedPayload:
		out := map[string]interface{}{"phase": string(p.Phase), "number": p.Number}
		if !p.Deadline.IsZero() {
			out["deadline"] = p.Deadline.UTC().Format(time.RFC3339)
		}
		return out, nil
	case app.PhaseEndedPayload:
		out := map[string]interface{}{"phase": string(p.Phase), "number": p.Number}
		switch {
		case p.Night != nil:
			out["deaths"] = deathList(p.Night.Deaths)
		case p.Day != nil:
			out["deaths"] = deathList(p.Day.Deaths)
			out["totals"] = tally(p.Day.Totals)
			out["majority"] = p.Day.Majority
			out["lynched"] = pid(p.Day.Lynched)
			out["spared"] = p.Day.Spared
		}
		return out, nil
	case app.Death:
		return death(p), nil
	case app.InvestigationResultPayload:
		out := map[string]interface{}{
			"actor":  pid(p.Actor),
			"target": pid(p.Target),
			"kind":   string(p.Kind),
			"answer": p.Answer,
		}
		if p.Role != "" {
			out["role"] = string(p.Role)
		}
		if p.Team != "" {
			out["team"] = string(p.Team)
		}
		if p.Matches != domain.NoPlayer {
			out["matches"] = pid(p.Matches)
		}
		if p.Kind == domain.ActionObserve {
			out["visitors"] = pidList(p.Visitors)
		}
		return out, nil
	case app.TotemDrawnPayload:
		return map[string]interface{}{"actor": pid(p.Actor), "totem": string(p.Totem)}, nil
	case app.TotemReceivedPayload:
		return map[string]interface{}{"target": pid(p.Target), "totem": string(p.Totem)}, nil
	case app.VoteRecordedPayload:
		return map[string]interface{}{"voter": pid(p.Voter), "target": pid(p.Target), "abstain": p.Abstain}, nil
	case app.ActionRecordedPayload:
		return map[string]interface{}{"actor": pid(p.Actor), "kind": string(p.Kind), "target": pid(p.Target)}, nil
	case app.ActionResolvedPayload:
		return map[string]interface{}{"actor": pid(p.Actor), "kind": string(p.Kind), "target": pid(p.Target), "other": pid(p.Other)}, nil
	case app.ShotFiredPayload:
		return map[string]interface{}{"shooter": pid(p.Shooter), "target": pid(p.Target), "hit": p.Hit}, nil
	case app.RoleRevealedPayload:
		return map[string]interface{}{"player": pid(p.Player), "role": string(p.Role), "template": p.Template, "reason": p.Reason}, nil
	case app.GameEndedPayload:
		roles := make(map[string]interface{}, len(p.Roles))
		for id, role := range p.Roles {
			roles[strconv.FormatInt(int64(id), 10)] = string(role)
		}
		return map[string]interface{}{
			"faction": string(p.Outcome.Faction),
			"reason":  p.Outcome.Reason,
			"winners": pidList(p.Outcome.Winners),
			"roles":   roles,
		}, nil
	}
	return nil, fmt.Errorf("unsupported payload %T for %s", ev.Payload, ev.Kind)
}

// pid converts a player id to a type structpb accepts.
func pid(id domain.PlayerID) int64 { return int64(id) }

func pidList(ids []domain.PlayerID) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = pid(id)
	}
	return out
}

func stringList(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func death(d app.Death) map[string]interface{} {
	out := map[string]interface{}{"victim": pid(d.Victim), "cause": string(d.Cause)}
	if d.Role != "" {
		out["role"] = string(d.Role)
	}
	return out
}

func deathList(deaths []app.Death) []interface{} {
	out := make([]interface{}, len(deaths))
	for i, d := range deaths {
		out[i] = death(d)
	}
	return out
}

func tally(totals map[domain.PlayerID]int) map[string]interface{} {
	out := make(map[string]interface{}, len(totals))
	for _, id := range domain.SortedIDs(totals) {
		out[strconv.FormatInt(int64(id), 10)] = totals[id]
	}
	return out
}

// playerField reads a player id from a message field. Numbers and numeric
// strings are accepted.
func playerField(msg *structpb.Struct, name string) (domain.PlayerID, error) {
	v, ok := msg.GetFields()[name]
	if !ok {
		return domain.NoPlayer, fmt.Errorf("missing %q", name)
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != float64(int64(n)) || n < 0 {
			return domain.NoPlayer, fmt.Errorf("%q is not a player id", name)
		}
		return domain.PlayerID(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return domain.NoPlayer, fmt.Errorf("%q is not a player id", name)
		}
		return domain.PlayerID(n), nil
	}
	return domain.NoPlayer, fmt.Errorf("%q is not a player id", name)
}

func stringField(msg *structpb.Struct, name string) string {
	return msg.GetFields()[name].GetStringValue()
}

func boolField(msg *structpb.Struct, name string) bool {
	return msg.GetFields()[name].GetBoolValue()
}

// stringMapField reads a flat object of string values, such as a night action payload.
func stringMapField(msg *structpb.Struct, name string) map[string]string {
	fields := msg.GetFields()[name].GetStructValue().GetFields()
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, field := range fields {
		switch v := field.GetKind().(type) {
		case *structpb.Value_StringValue:
			out[k] = v.StringValue
		case *structpb.Value_NumberValue:
			out[k] = strconv.FormatFloat(v.NumberValue, 'f', -1, 64)
		case *structpb.Value_BoolValue:
			out[k] = strconv.FormatBool(v.BoolValue)
		}
	}
	return out
}
