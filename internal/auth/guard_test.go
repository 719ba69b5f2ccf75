package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	owner := Identity{UserID: 111, Username: "tester1"}
	other := Identity{UserID: 222, Username: "tester2"}

	cases := []struct {
		name   string
		id     Identity
		action Action
		want   Decision
	}{
		{"public anonymous", Anonymous, Public, Allow},
		{"public other", other, Public, Allow},
		{"authenticated anonymous", Anonymous, AuthenticatedOnly, Deny},
		{"authenticated other", other, AuthenticatedOnly, Allow},
		{"authenticated owner", owner, AuthenticatedOnly, Allow},
		{"owner anonymous", Anonymous, OwnerOnly, Deny},
		{"owner other", other, OwnerOnly, Deny},
		{"owner owner", owner, OwnerOnly, Allow},
		{"unknown action", owner, Action(42), Deny},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authorize(tc.id, 111, tc.action))
		})
	}
}

func TestRequire(t *testing.T) {
	assert.ErrorIs(t, Require(Anonymous, 111, AuthenticatedOnly), ErrUnauthorized)
	assert.ErrorIs(t, Require(Identity{UserID: 222}, 111, OwnerOnly), ErrUnauthorized)
	assert.NoError(t, Require(Identity{UserID: 111}, 111, OwnerOnly))
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, FromContext(ctx).Authenticated())

	ctx = WithIdentity(ctx, Identity{UserID: 7, Username: "seven"})
	got := FromContext(ctx)
	assert.True(t, got.Authenticated())
	assert.Equal(t, uint(7), got.UserID)
}
