package handler

import (
	"testing"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthenticate(t *testing.T) {
	hash := hashedPassword(t, "correct-password")

	t.Run("active account with correct password", func(t *testing.T) {
		user := model.User{Status: model.StatusActive, Password: hash}
		require.NoError(t, authenticate(&user, "correct-password"))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		user := model.User{Status: model.StatusActive, Password: hash}
		err := authenticate(&user, "wrong-password")
		require.Error(t, err)
		require.Equal(t, apperr.KindUnauthorized, apperr.From(err).Kind)
	})

	// An inactive account with the right password must be indistinguishable
	// from a wrong password, so account state cannot be probed
	t.Run("inactive account with correct password is rejected identically", func(t *testing.T) {
		inactive := model.User{Status: model.StatusInactive, Password: hash}
		inactiveErr := authenticate(&inactive, "correct-password")
		require.Error(t, inactiveErr)

		active := model.User{Status: model.StatusActive, Password: hash}
		wrongErr := authenticate(&active, "wrong-password")
		require.Error(t, wrongErr)

		require.Equal(t, wrongErr.Error(), inactiveErr.Error())
		require.Equal(t, apperr.From(wrongErr).Kind, apperr.From(inactiveErr).Kind)
	})
}
