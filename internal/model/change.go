package model

const (
	EntityItem        = "item"
	EntitySessionNote = "session_note"
	// EntityCart changes are in-memory only; nothing is stored.
	EntityCart = "cart"
)

const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionCleared  = "cleared"
	ActionReplaced = "replaced"
)

// Change describes a committed mutation of the record store.
type Change struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
	Count  int64  `json:"count,omitempty"`
}
