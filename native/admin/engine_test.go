package admin

import (
	"testing"

	"animalrogue/core/events"
)

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func TestDeployerSeededAsAdmin(t *testing.T) {
	engine := NewEngine(addr(1))
	if !engine.IsAdmin(addr(1)) {
		t.Fatalf("deployer should be an admin")
	}
	if engine.IsAdmin(addr(2)) {
		t.Fatalf("unexpected admin")
	}
}

func TestAddAdmin(t *testing.T) {
	engine := NewEngine(addr(1))
	recorder := events.NewRecorder()
	engine.SetEmitter(recorder)

	if engine.AddAdmin(addr(9), addr(2)) {
		t.Fatalf("non-admin caller must be declined")
	}
	if !engine.AddAdmin(addr(1), addr(2)) {
		t.Fatalf("admin caller should add a new member")
	}
	if engine.AddAdmin(addr(1), addr(2)) {
		t.Fatalf("duplicate add must be declined")
	}
	if !engine.IsAdmin(addr(2)) {
		t.Fatalf("added account should be admin")
	}
	recorded := recorder.Events(0, 0)
	if len(recorded) != 1 || recorded[0].Type != EventTypeAdminAdded {
		t.Fatalf("expected one %s event, got %+v", EventTypeAdminAdded, recorded)
	}
}

func TestRemoveAdmin(t *testing.T) {
	engine := NewEngine(addr(1))
	recorder := events.NewRecorder()
	engine.SetEmitter(recorder)
	engine.AddAdmin(addr(1), addr(2))

	if engine.RemoveAdmin(addr(9), addr(2)) {
		t.Fatalf("non-admin caller must be declined")
	}
	if engine.RemoveAdmin(addr(1), addr(3)) {
		t.Fatalf("removing an absent account must be declined")
	}
	if !engine.RemoveAdmin(addr(1), addr(2)) {
		t.Fatalf("admin caller should remove a member")
	}
	if engine.IsAdmin(addr(2)) {
		t.Fatalf("removed account should not be admin")
	}

	// The last admin can remove itself; the set then locks out all
	// administrative mutations.
	if !engine.RemoveAdmin(addr(1), addr(1)) {
		t.Fatalf("last admin removal is not guarded")
	}
	if len(engine.Admins()) != 0 {
		t.Fatalf("admin set should be empty")
	}
	if engine.AddAdmin(addr(1), addr(1)) {
		t.Fatalf("empty admin set should decline every mutation")
	}
}
