// Package backup turns the full item set into a single pasteable string and
// back:
//
//	SHOPLIST_DB_V1_GZIP:<base64(gzip(json snapshot))>
package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/dukerupert/goshop/internal/model"
)

// FormatTag prefixes every backup string and is repeated inside the payload.
const FormatTag = "SHOPLIST_DB_V1_GZIP"

const (
	delimiter = ":"

	maxPayloadSize = 32 << 20
)

var (
	ErrEmptyInput        = errors.New("please paste the export data")
	ErrUnsupportedFormat = errors.New("invalid or unsupported export format")
	ErrCorruptPayload    = errors.New("failed to import database, please check the data format")
	ErrInvalidStructure  = errors.New("invalid export data structure")
)

// Snapshot is the JSON document inside a backup string. Item ids are left out
// because they are reassigned on import.
type Snapshot struct {
	Version   string         `json:"version"`
	Timestamp int64          `json:"timestamp"`
	ItemCount int            `json:"itemCount"`
	Items     []SnapshotItem `json:"items"`
}

type SnapshotItem struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	IsActive  bool   `json:"is_active"`
	CreatedAt int64  `json:"created_at"`
}

func NewSnapshot(items []model.Item, now time.Time) Snapshot {
	snap := Snapshot{
		Version:   FormatTag,
		Timestamp: now.UnixMilli(),
		ItemCount: len(items),
		Items:     make([]SnapshotItem, len(items)),
	}
	for i, item := range items {
		snap.Items[i] = SnapshotItem{
			Name:      item.Name,
			Category:  item.Category,
			IsActive:  item.IsActive,
			CreatedAt: item.CreatedAt,
		}
	}
	return snap
}

// Encode serializes items into a backup string.
func Encode(items []model.Item, now time.Time) (string, error) {
	data, err := json.Marshal(NewSnapshot(items, now))
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	compressed, err := compress(data)
	if err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	return FormatTag + delimiter + base64.StdEncoding.EncodeToString(compressed), nil
}

// Decode validates a backup string completely and returns the items it holds,
// ready for insertion. Missing created_at values are set to now.
func Decode(s string, now time.Time) ([]model.Item, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyInput
	}

	tag, payload, found := strings.Cut(s, delimiter)
	if !found || tag != FormatTag {
		return nil, ErrUnsupportedFormat
	}

	// Pasted strings are often wrapped across lines.
	payload = strings.Join(strings.Fields(payload), "")
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrCorruptPayload, err)
	}

	data, err := decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrCorruptPayload, err)
	}

	if rawVersion, ok := envelope["version"]; ok {
		var version string
		if err := json.Unmarshal(rawVersion, &version); err != nil || version != FormatTag {
			return nil, ErrUnsupportedFormat
		}
	}

	rawItems, ok := envelope["items"]
	if !ok {
		return nil, ErrInvalidStructure
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawItems, &entries); err != nil || entries == nil {
		return nil, ErrInvalidStructure
	}

	items := make([]model.Item, 0, len(entries))
	for i, raw := range entries {
		var entry SnapshotItem
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidStructure, i, err)
		}

		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidStructure, i)
		}
		category := strings.TrimSpace(entry.Category)
		if category == "" {
			category = model.DefaultCategory
		}
		createdAt := entry.CreatedAt
		if createdAt == 0 {
			createdAt = now.UnixMilli()
		}

		items = append(items, model.Item{
			Name:      name,
			Category:  category,
			IsActive:  entry.IsActive,
			CreatedAt: createdAt,
		})
	}
	return items, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	if len(out) > maxPayloadSize {
		return nil, fmt.Errorf("payload exceeds %d bytes", maxPayloadSize)
	}
	return out, nil
}
