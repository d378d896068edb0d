package admin

import "animalrogue/crypto"

const (
	// EventTypeAdminAdded is emitted when an account joins the admin set.
	EventTypeAdminAdded = "admin.added"
	// EventTypeAdminRemoved is emitted when an account leaves the admin set.
	EventTypeAdminRemoved = "admin.removed"
)

// AdminAdded captures a successful AddAdmin call.
type AdminAdded struct {
	Admin [20]byte
}

func (AdminAdded) EventType() string { return EventTypeAdminAdded }

func (e AdminAdded) Attributes() map[string]string {
	return map[string]string{
		"admin": crypto.NewAddress(e.Admin).String(),
	}
}

// AdminRemoved captures a successful RemoveAdmin call.
type AdminRemoved struct {
	Admin [20]byte
}

func (AdminRemoved) EventType() string { return EventTypeAdminRemoved }

func (e AdminRemoved) Attributes() map[string]string {
	return map[string]string{
		"admin": crypto.NewAddress(e.Admin).String(),
	}
}
