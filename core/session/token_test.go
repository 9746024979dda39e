package session

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
)

func TestTokenService(t *testing.T) {
	ts := NewTokenService([]byte("secret"), "test")
	occ := Occurrence{
		ID:          7,
		TimetableID: 3,
		ClassroomID: 2,
		Date:        "2021-03-08",
		Time:        "14:00:00",
		Link:        "https://meet.example.com/abc",
	}

	// pin both our clock and the jwt validation clock to the class day
	classDay := time.Date(2021, 3, 8, 13, 0, 0, 0, time.UTC)
	defer func(f func() time.Time) { nowFunc = f; jwt.TimeFunc = time.Now }(nowFunc)
	nowFunc = func() time.Time { return classDay }
	jwt.TimeFunc = func() time.Time { return classDay }

	t.Run("join token round trip", func(t *testing.T) {
		tokenStr, err := ts.Mint(CapabilityJoin, occ, 42)
		assert.NoError(t, err)

		claims, err := ts.Redeem(tokenStr, CapabilityJoin)
		assert.NoError(t, err)
		assert.Equal(t, 7, claims.OccurrenceID)
		assert.Equal(t, 3, claims.TimetableID)
		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "2021-03-08", claims.Date)
		assert.Equal(t, "14:00:00", claims.Time)
		assert.Equal(t, occ.Link, claims.Link)
		assert.NotEmpty(t, claims.Id)
	})

	t.Run("cancel token carries no link", func(t *testing.T) {
		tokenStr, err := ts.Mint(CapabilityCancel, occ, 42)
		assert.NoError(t, err)

		claims, err := ts.Redeem(tokenStr, CapabilityCancel)
		assert.NoError(t, err)
		assert.Empty(t, claims.Link)
	})

	t.Run("capability mismatch rejected", func(t *testing.T) {
		tokenStr, err := ts.Mint(CapabilityCancel, occ, 42)
		assert.NoError(t, err)

		_, err = ts.Redeem(tokenStr, CapabilityJoin)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		tokenStr, err := NewTokenService([]byte("other"), "test").Mint(CapabilityJoin, occ, 42)
		assert.NoError(t, err)

		_, err = ts.Redeem(tokenStr, CapabilityJoin)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("expired after the class day", func(t *testing.T) {
		tokenStr, err := ts.Mint(CapabilityJoin, occ, 42)
		assert.NoError(t, err)

		jwt.TimeFunc = func() time.Time {
			return time.Date(2021, 3, 9, 0, 1, 0, 0, time.UTC)
		}
		defer func() { jwt.TimeFunc = func() time.Time { return classDay } }()

		_, err = ts.Redeem(tokenStr, CapabilityJoin)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ts.Redeem("not.a.token", CapabilityJoin)
		assert.Equal(t, ErrInvalidToken, err)
	})
}
