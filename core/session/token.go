package session

import (
	"errors"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/convenientedu/portal/core"
)

// ErrInvalidToken covers every token failure mode: bad signature, expired,
// malformed, or minted for another purpose. Callers get no finer detail.
var ErrInvalidToken = errors.New("invalid or expired session token")

type (
	// Capability names the single action a token authorizes.
	Capability string

	// capabilityClaims is the signed payload of a join or cancel token. It
	// carries everything the action needs so redemption does not have to
	// trust the request body.
	capabilityClaims struct {
		jwt.StandardClaims
		Capability   Capability `json:"cap"`
		OccurrenceID int        `json:"occ"`
		TimetableID  int        `json:"tid"`
		ClassroomID  int        `json:"crid"`
		UserID       int        `json:"uid"`
		Date         string     `json:"date"`
		Time         string     `json:"time"`
		Link         string     `json:"link,omitempty"`
	}

	// TokenService mints and redeems short-lived capability tokens. Tokens
	// expire at the end of the occurrence's calendar day.
	TokenService struct {
		secret []byte
		issuer string
	}
)

const (
	CapabilityJoin   Capability = "join"
	CapabilityCancel Capability = "cancel"
)

func NewTokenService(secret []byte, issuer string) *TokenService {
	return &TokenService{secret: secret, issuer: issuer}
}

// Mint signs a capability token for uid acting on occ. The token is bound to
// the occurrence's date and expires with it.
func (ts *TokenService) Mint(cap Capability, occ Occurrence, uid int) (string, error) {
	exp, err := core.EndOfClassDate(occ.Date)
	if err != nil {
		return "", err
	}
	claims := capabilityClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    ts.issuer,
			IssuedAt:  nowFunc().UTC().Unix(),
			ExpiresAt: exp.Unix(),
		},
		Capability:   cap,
		OccurrenceID: occ.ID,
		TimetableID:  occ.TimetableID,
		ClassroomID:  occ.ClassroomID,
		UserID:       uid,
		Date:         occ.Date,
		Time:         occ.Time,
	}
	if cap == CapabilityJoin {
		claims.Link = occ.Link
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

// Redeem verifies a token and checks it was minted for the wanted capability.
// Any failure maps to ErrInvalidToken.
func (ts *TokenService) Redeem(tokenStr string, want Capability) (capabilityClaims, error) {
	claims := capabilityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return capabilityClaims{}, ErrInvalidToken
	}
	if claims.Capability != want {
		return capabilityClaims{}, ErrInvalidToken
	}
	return claims, nil
}
