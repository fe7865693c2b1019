package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarych/web_shop/internal/models"
)

func TestAllow(t *testing.T) {
	user := &models.User{ID: 1}
	admin := &models.User{ID: 2, IsAdmin: true}

	cases := []struct {
		name       string
		caller     *models.User
		ownerID    uint
		capability Capability
		want       bool
	}{
		{"self matches owner", user, 1, Self, true},
		{"self rejects other", user, 2, Self, false},
		{"self rejects admin impersonation", admin, 1, Self, false},
		{"admin only rejects user", user, 0, Admin, false},
		{"admin only allows admin", admin, 0, Admin, true},
		{"self-or-admin allows owner", user, 1, SelfOrAdmin, true},
		{"self-or-admin allows admin", admin, 1, SelfOrAdmin, true},
		{"self-or-admin rejects stranger", user, 3, SelfOrAdmin, false},
		{"nil caller always denied", nil, 1, SelfOrAdmin, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Allow(tc.caller, tc.ownerID, tc.capability))
		})
	}
}
