package websocket

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/dukerupert/goshop/internal/live"
)

// View is a named query a client can subscribe to, such as "items" or
// "categories". Its result is pushed again after every store change.
type View func() (any, error)

// Views is the set of queries exposed over the feed.
type Views map[string]View

// Names returns the registered view names in sorted order.
func (v Views) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Select parses a comma separated view list. An empty list selects every
// view; unknown names are returned separately.
func (v Views) Select(list string) (selected, unknown []string) {
	if strings.TrimSpace(list) == "" {
		return v.Names(), nil
	}
	seen := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := v[name]; ok {
			selected = append(selected, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}

// subscribe attaches a client to one view through the live registry.
// Results are coalesced per view rather than queued.
func (c *Client) subscribe(registry *live.Registry, name string, view View) *live.Subscription {
	return live.Subscribe(registry, view, func(result any) {
		data, err := json.Marshal(NewSnapshotMessage(name, result))
		if err != nil {
			c.logger.Error("marshal snapshot", "view", name, "error", err)
			return
		}
		c.setSnapshot(name, data)
	})
}
