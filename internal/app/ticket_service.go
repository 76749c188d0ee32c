package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// TicketService issues and checks the signed tickets a client presents when
// joining a match.
type TicketService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// ErrInvalidTicket reports a ticket that is malformed, expired or issued for
// another user or match.
var ErrInvalidTicket = errors.New("invalid join ticket")

// DefaultTicketTTL applies when NewTicketService is given a non-positive ttl.
const DefaultTicketTTL = 5 * time.Minute

func NewTicketService(secret, issuer string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Enabled reports whether tickets are configured. Without a secret, joins are not ticket-checked.
func (s *TicketService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue signs a ticket letting userID join matchID.
func (s *TicketService) Issue(userID, matchID string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("ticket secret is not configured")
	}
	if userID == "" || matchID == "" {
		return "", fmt.Errorf("user and match are required")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID,
		"mid": matchID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks that ticket was signed by this service for userID and matchID.
func (s *TicketService) Verify(ticket, userID, matchID string) error {
	if !s.Enabled() {
		return fmt.Errorf("ticket secret is not configured")
	}
	token, err := jwt.Parse(ticket, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrInvalidTicket
	}
	if sub, _ := claims["sub"].(string); sub != userID {
		return fmt.Errorf("%w: issued to another user", ErrInvalidTicket)
	}
	if mid, _ := claims["mid"].(string); mid != matchID {
		return fmt.Errorf("%w: issued for another match", ErrInvalidTicket)
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return fmt.Errorf("%w: unexpected issuer", ErrInvalidTicket)
	}
	return nil
}
