package pipeline

// QuerySlot is the implicit read-only slot holding the raw user query.
const QuerySlot = "query"

// AbsentMarker replaces a placeholder whose slot has not been written.
const AbsentMarker = "(not available)"

// Slot is a write-once value of a State.
type Slot struct {
	value   string
	written bool
}

// Set writes the slot. A slot can only be written once.
func (s *Slot) Set(value string) error {
	if s.written {
		return ErrSlotAlreadyWritten
	}
	s.value = value
	s.written = true

	return nil
}

// Get returns the value and whether the slot has been written.
func (s *Slot) Get() (string, bool) {
	return s.value, s.written
}

// Written reports whether the slot holds a value.
func (s *Slot) Written() bool {
	return s.written
}

// State is the shared state of one run.
//
// Implementations are records with one Slot field per slot. Slot returns the field for a name, or false
// when the record has no such slot.
type State interface {
	Query() string
	Slot(name string) (*Slot, bool)
}

// lookupSlot reads a slot of the state, the query included.
func lookupSlot(state State, name string) (string, bool) {
	if name == QuerySlot {
		return state.Query(), true
	}
	slot, ok := state.Slot(name)
	if !ok {
		return "", false
	}

	return slot.Get()
}
