package model

// SessionNote annotates an item for the current shopping session only.
type SessionNote struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	Note      string `json:"note"`
	CreatedAt int64  `json:"created_at"`
}
