package backup

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/goshop/internal/model"
)

// SessionListTag prefixes an exported shopping-session list.
const SessionListTag = "SHOPLIST_V1"

type SessionList struct {
	Version   string            `json:"version"`
	Timestamp int64             `json:"timestamp"`
	Items     []SessionListItem `json:"items"`
}

type SessionListItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	InCart   bool   `json:"inCart"`
}

// EncodeSessionList exports the active items of a session, each flagged with
// whether it is already in the cart. The result is uncompressed base64 JSON.
func EncodeSessionList(items []model.Item, inCart func(id int64) bool, now time.Time) (string, error) {
	list := SessionList{
		Version:   SessionListTag,
		Timestamp: now.UnixMilli(),
		Items:     make([]SessionListItem, len(items)),
	}
	for i, item := range items {
		list.Items[i] = SessionListItem{
			Name:     item.Name,
			Category: item.Category,
			InCart:   inCart != nil && inCart(item.ID),
		}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("marshal session list: %w", err)
	}
	return SessionListTag + delimiter + base64.StdEncoding.EncodeToString(data), nil
}
