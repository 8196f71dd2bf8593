package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/goshop/internal/model"
)

var fixedNow = time.UnixMilli(1700000000000)

// wrap builds a backup string around an arbitrary JSON document.
func wrap(t *testing.T, doc string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return FormatTag + ":" + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items := []model.Item{
		{ID: 7, Name: "Milk", Category: "Dairy", IsActive: true, CreatedAt: 1000},
		{ID: 9, Name: "Bread", Category: "Bakery", CreatedAt: 2000},
	}

	s, err := Encode(items, fixedNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, FormatTag+":"))

	got, err := Decode(s, fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range items {
		assert.Zero(t, got[i].ID)
		assert.Equal(t, items[i].Name, got[i].Name)
		assert.Equal(t, items[i].Category, got[i].Category)
		assert.Equal(t, items[i].IsActive, got[i].IsActive)
		assert.Equal(t, items[i].CreatedAt, got[i].CreatedAt)
	}
}

func TestEncodeSnapshotFields(t *testing.T) {
	s, err := Encode([]model.Item{{Name: "Eggs", Category: "Dairy", CreatedAt: 5}}, fixedNow)
	require.NoError(t, err)

	_, payload, _ := strings.Cut(s, ":")
	compressed, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	data, err := decompress(compressed)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, FormatTag, snap.Version)
	assert.Equal(t, fixedNow.UnixMilli(), snap.Timestamp)
	assert.Equal(t, 1, snap.ItemCount)
	assert.Contains(t, string(data), `"itemCount":1`)
	assert.NotContains(t, string(data), `"id"`)
}

func TestEncodeEmpty(t *testing.T) {
	s, err := Encode(nil, fixedNow)
	require.NoError(t, err)

	got, err := Decode(s, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeToleratesWhitespace(t *testing.T) {
	s, err := Encode([]model.Item{{Name: "Milk", Category: "Dairy", CreatedAt: 1}}, fixedNow)
	require.NoError(t, err)

	tag, payload, _ := strings.Cut(s, ":")
	mid := len(payload) / 2
	wrapped := "  \n" + tag + ":" + payload[:mid] + "\n  " + payload[mid:] + "\n"

	got, err := Decode(wrapped, fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Milk", got[0].Name)
}

func TestDecodeDefaults(t *testing.T) {
	s := wrap(t, `{"version":"SHOPLIST_DB_V1_GZIP","items":[{"name":" Tea ","category":"  "}]}`)

	got, err := Decode(s, fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tea", got[0].Name)
	assert.Equal(t, model.DefaultCategory, got[0].Category)
	assert.False(t, got[0].IsActive)
	assert.Equal(t, fixedNow.UnixMilli(), got[0].CreatedAt)
}

func TestDecodeWithoutVersion(t *testing.T) {
	got, err := Decode(wrap(t, `{"items":[{"name":"Tea"}]}`), fixedNow)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmptyInput},
		{"whitespace only", "  \n\t", ErrEmptyInput},
		{"no delimiter", "SHOPLIST_DB_V1_GZIP", ErrUnsupportedFormat},
		{"wrong tag", "SHOPLIST_V1:abcd", ErrUnsupportedFormat},
		{"bad base64", FormatTag + ":!!!not-base64!!!", ErrCorruptPayload},
		{"not gzip", FormatTag + ":" + base64.StdEncoding.EncodeToString([]byte("plain")), ErrCorruptPayload},
		{"not json", wrap(t, "not json"), ErrCorruptPayload},
		{"json array", wrap(t, `[1,2]`), ErrCorruptPayload},
		{"inner version mismatch", wrap(t, `{"version":"OTHER","items":[]}`), ErrUnsupportedFormat},
		{"missing items", wrap(t, `{"version":"SHOPLIST_DB_V1_GZIP"}`), ErrInvalidStructure},
		{"null items", wrap(t, `{"items":null}`), ErrInvalidStructure},
		{"items not array", wrap(t, `{"items":{"name":"x"}}`), ErrInvalidStructure},
		{"item not object", wrap(t, `{"items":[42]}`), ErrInvalidStructure},
		{"item without name", wrap(t, `{"items":[{"name":"ok"},{"category":"Dairy"}]}`), ErrInvalidStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input, fixedNow)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, got)
		})
	}
}

func TestEncodeSessionList(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Milk", Category: "Dairy", IsActive: true},
		{ID: 2, Name: "Bread", Category: "Bakery", IsActive: true},
	}
	inCart := func(id int64) bool { return id == 2 }

	s, err := EncodeSessionList(items, inCart, fixedNow)
	require.NoError(t, err)

	tag, payload, found := strings.Cut(s, ":")
	require.True(t, found)
	assert.Equal(t, SessionListTag, tag)

	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)

	var list SessionList
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, SessionListTag, list.Version)
	assert.Equal(t, fixedNow.UnixMilli(), list.Timestamp)
	assert.Equal(t, []SessionListItem{
		{Name: "Milk", Category: "Dairy", InCart: false},
		{Name: "Bread", Category: "Bakery", InCart: true},
	}, list.Items)
}
