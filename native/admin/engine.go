package admin

import "animalrogue/core/events"

// Engine maintains the ordered set of privileged accounts. Every
// administrative mutation elsewhere in the core is gated on membership here.
//
// Add and Remove are boolean-signaled: a non-admin caller or a no-op request
// yields false, never a hard failure. Nothing guards against removing the
// last admin; doing so permanently locks out administrative operations.
type Engine struct {
	admins  [][20]byte
	emitter events.Emitter
}

// NewEngine constructs the admin set with the deploying account as its first
// member.
func NewEngine(deployer [20]byte) *Engine {
	return &Engine{
		admins:  [][20]byte{deployer},
		emitter: events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// IsAdmin reports whether the account is a member of the admin set.
func (e *Engine) IsAdmin(account [20]byte) bool {
	for _, admin := range e.admins {
		if admin == account {
			return true
		}
	}
	return false
}

// AddAdmin appends the account to the admin set. It returns false without
// mutating when the caller is not an admin or the account is already present.
func (e *Engine) AddAdmin(caller, account [20]byte) bool {
	if !e.IsAdmin(caller) {
		return false
	}
	if e.IsAdmin(account) {
		return false
	}
	e.admins = append(e.admins, account)
	e.emitter.Emit(AdminAdded{Admin: account})
	return true
}

// RemoveAdmin removes the account from the admin set. It returns false
// without mutating when the caller is not an admin or the account is absent.
func (e *Engine) RemoveAdmin(caller, account [20]byte) bool {
	if !e.IsAdmin(caller) {
		return false
	}
	for i, admin := range e.admins {
		if admin == account {
			e.admins = append(e.admins[:i], e.admins[i+1:]...)
			e.emitter.Emit(AdminRemoved{Admin: account})
			return true
		}
	}
	return false
}

// Admins returns a copy of the admin set in insertion order.
func (e *Engine) Admins() [][20]byte {
	out := make([][20]byte, len(e.admins))
	copy(out, e.admins)
	return out
}

// Restore replaces the admin set from a snapshot.
func (e *Engine) Restore(admins [][20]byte) {
	e.admins = make([][20]byte, len(admins))
	copy(e.admins, admins)
}
