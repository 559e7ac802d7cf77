package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleNormalization(t *testing.T) {
	for _, in := range []string{"doctor", "DOCTOR", "Role_Doctor", " ROLE_DOCTOR "} {
		role, err := ParseRole(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, RoleDoctor, role, "input %q", in)
	}

	_, err := ParseRole("janitor")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestExchangeEligibility(t *testing.T) {
	assert.True(t, RoleDoctor.ExchangeEligible())
	assert.True(t, RoleNurse.ExchangeEligible())
	assert.True(t, RoleAssistant.ExchangeEligible())

	assert.False(t, RoleAdmin.ExchangeEligible())
	assert.False(t, RoleAuxiliary.ExchangeEligible())
	assert.False(t, RoleUser.ExchangeEligible())
}

func TestUserRoleSet(t *testing.T) {
	u := User{Roles: []string{"nurse", "user"}}
	assert.True(t, u.HasRole(RoleNurse))
	assert.False(t, u.HasRole(RoleDoctor))
	assert.Equal(t, RoleNurse, u.PrimaryRole())

	empty := User{}
	assert.Equal(t, RoleUser, empty.PrimaryRole())
}

func TestParseRequestState(t *testing.T) {
	st, err := ParseRequestState("PENDING")
	require.NoError(t, err)
	assert.Equal(t, StatePending, st)
	assert.False(t, st.Terminal())

	for _, s := range []RequestState{StateAccepted, StateRejected, StateCancelled} {
		assert.True(t, s.Terminal())
	}

	_, err = ParseRequestState("limbo")
	assert.Error(t, err)
}
