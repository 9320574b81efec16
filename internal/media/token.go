// Package media mints LiveKit room-join tokens for the caller frontend. It
// shares no state with the escalation core.
package media

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrIdentityRequired = errors.New("identity required")

const tokenTTL = time.Hour

// videoGrant mirrors the LiveKit access grant: join any room, publish and
// subscribe.
type videoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"room_join"`
	CanPublish   bool   `json:"can_publish"`
	CanSubscribe bool   `json:"can_subscribe"`
}

type roomClaims struct {
	jwt.RegisteredClaims
	Video videoGrant `json:"video"`
}

// Issuer signs room tokens with the LiveKit API secret.
type Issuer struct {
	url       string
	apiKey    string
	apiSecret []byte
}

func NewIssuer(url, apiKey, apiSecret string) *Issuer {
	return &Issuer{url: url, apiKey: apiKey, apiSecret: []byte(apiSecret)}
}

// Configured reports whether LiveKit credentials were provided.
func (i *Issuer) Configured() bool {
	return i.apiKey != "" && len(i.apiSecret) > 0
}

// RoomToken returns a signed HS256 token for the given participant identity
// plus the LiveKit server URL the frontend should connect to.
func (i *Issuer) RoomToken(identity string) (token, url string, err error) {
	if identity == "" {
		return "", "", ErrIdentityRequired
	}

	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Video: videoGrant{
			Room:         "*",
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.apiSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, i.url, nil
}
