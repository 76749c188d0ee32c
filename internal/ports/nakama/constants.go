package nakama

const (
	// RpcFindGame returns the open lobby, creating one if needed, with a join ticket.
	RpcFindGame = "find_game"
	// RpcJoinTicket issues a join ticket for a known match id.
	RpcJoinTicket = "join_ticket"
	// RpcStasis reports how many games the caller still has to sit out.
	RpcStasis = "stasis_get"
	// RpcNotifySubscribe and RpcNotifyUnsubscribe manage new-game notifications.
	RpcNotifySubscribe   = "notify_subscribe"
	RpcNotifyUnsubscribe = "notify_unsubscribe"

	// MatchNameWolfbot is the authoritative match handler name registered with Nakama.
	MatchNameWolfbot = "wolfbot_match"

	// Match label keys used by find_game queries.
	MatchLabelKey_Game  = "game"
	MatchLabelKey_Phase = "phase"
	MatchLabelKey_Open  = "open"
	MatchLabelKey_Mode  = "mode"
	matchLabelGame      = "wolfbot"

	// JoinMetadataTicket is the join metadata key carrying the ticket.
	JoinMetadataTicket = "ticket"
)

// Op codes for client messages and server events. Payloads are JSON
// encoded google.protobuf.Struct messages.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpVote        int64 = 2
	OpNightAction int64 = 3
	OpDayAction   int64 = 4
	OpForceEnd    int64 = 5

	// Server -> Client events
	OpPlayerJoined        int64 = 101
	OpPlayerLeft          int64 = 102
	OpGameStarted         int64 = 103
	OpRoleAssigned        int64 = 104 // send privately
	OpPhaseStarted        int64 = 105
	OpPhaseEnded          int64 = 106
	OpDeathReported       int64 = 107
	OpInvestigationResult int64 = 108 // send privately
	OpTotemDrawn          int64 = 109 // send privately
	OpTotemReceived       int64 = 110
	OpVoteRecorded        int64 = 111
	OpActionRecorded      int64 = 112 // send privately
	OpActionResolved      int64 = 113
	OpShotFired           int64 = 114
	OpRoleRevealed        int64 = 115
	OpGameEnded           int64 = 116

	OpMatchState int64 = 120
	OpGameError  int64 = 199
)

// Notification codes. Nakama reserves codes <= 0.
const (
	NotifyCodeGameOpen = 101
)

// Storage collections.
const (
	stasisCollection    = "stasis"
	stasisKey           = "penalty"
	notifyCollection    = "notify"
	notifySubscriberKey = "subscribers"
)
