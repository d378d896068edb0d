package common

import "errors"

// ErrNotAdmin aborts an invocation whose caller lacks admin membership.
var ErrNotAdmin = errors.New("not admin")

// AdminView is the membership check the ledgers, market and game engines gate
// their administrative surfaces on.
type AdminView interface {
	IsAdmin(account [20]byte) bool
}

// RequireAdmin returns ErrNotAdmin unless the caller is a member of the admin
// set. A nil view declines everyone.
func RequireAdmin(view AdminView, caller [20]byte) error {
	if view == nil || !view.IsAdmin(caller) {
		return ErrNotAdmin
	}
	return nil
}
