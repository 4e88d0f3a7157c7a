package users_test

import (
	"testing"

	"github.com/jrsteele09/go-festival-companion/users"
	"github.com/stretchr/testify/require"
)

func TestUser_DisplayName(t *testing.T) {
	t.Run("full name wins", func(t *testing.T) {
		u := users.User{FullName: "Nguyen Van A", FirstName: "A", Username: "nva"}
		require.Equal(t, "Nguyen Van A", u.DisplayName())
	})

	t.Run("first and last", func(t *testing.T) {
		u := users.User{FirstName: "Lan", LastName: "Tran", Username: "lan"}
		require.Equal(t, "Lan Tran", u.DisplayName())
	})

	t.Run("username fallback", func(t *testing.T) {
		u := users.User{Username: "lan"}
		require.Equal(t, "lan", u.DisplayName())
	})
}

func TestUser_HasRole(t *testing.T) {
	u := users.User{Roles: []users.RoleType{users.RoleUser, users.RoleTourProvider}}
	require.True(t, u.HasRole(users.RoleTourProvider))
	require.False(t, u.HasRole(users.RoleAdmin))
}
