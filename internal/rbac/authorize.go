// Package rbac gates handlers on the authenticated account's role or ownership.
package rbac

import (
	"github.com/creatorlink/creatorlink/internal/shared"
)

// Authorize checks that an account is present and, when roles are given,
// holds one of them.
func Authorize(account shared.PublicAccount, ok bool, roles ...shared.Role) error {
	if !ok {
		return shared.ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if account.Role == role {
			return nil
		}
	}
	return shared.ErrForbidden
}

// RequireOwner checks that the account owns the resource.
func RequireOwner(account shared.PublicAccount, ok bool, ownerID int64) error {
	if !ok {
		return shared.ErrUnauthenticated
	}
	if account.ID != ownerID {
		return shared.ErrForbidden
	}
	return nil
}
