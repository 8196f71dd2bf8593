package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/dukerupert/goshop/internal/database"
	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/shopping"
	"github.com/dukerupert/goshop/internal/store"
)

type handlers struct {
	svc      *shopping.Service
	item     *ItemHandler
	category *CategoryHandler
	session  *SessionHandler
	transfer *TransferHandler
}

func setupHandlers(t *testing.T) handlers {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := shopping.NewService(store.NewItemStore(db, nil), store.NewSessionNoteStore(db, nil), nil, logger)
	return handlers{
		svc:      svc,
		item:     NewItemHandler(svc, logger),
		category: NewCategoryHandler(svc, logger),
		session:  NewSessionHandler(svc, logger),
		transfer: NewTransferHandler(svc, logger),
	}
}

func do(h http.HandlerFunc, method, target, body string, pathValues ...string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(pathValues); i += 2 {
		r.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func createItem(t *testing.T, h handlers, name, category string) model.Item {
	t.Helper()
	body, _ := json.Marshal(itemRequest{Name: name, Category: category})
	w := do(h.item.Create, http.MethodPost, "/api/items", string(body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q: status %d: %s", name, w.Code, w.Body.String())
	}
	return decode[model.Item](t, w)
}

func idStr(id int64) string { return strconv.FormatInt(id, 10) }

func TestCreateAndListItems(t *testing.T) {
	h := setupHandlers(t)

	w := do(h.item.List, http.MethodGet, "/api/items", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty list: %d %q", w.Code, w.Body.String())
	}

	milk := createItem(t, h, "Milk", "Dairy")
	createItem(t, h, "Bread", "")

	items := decode[[]model.Item](t, do(h.item.List, http.MethodGet, "/api/items?q=dairy", ""))
	if len(items) != 1 || items[0].ID != milk.ID {
		t.Errorf("search dairy = %+v", items)
	}

	groups := decode[[]model.CategoryGroup](t, do(h.item.Grouped, http.MethodGet, "/api/items/grouped", ""))
	if len(groups) != 2 || groups[0].Name != "Dairy" || groups[1].Name != model.DefaultCategory {
		t.Errorf("groups = %+v", groups)
	}
}

func TestCreateItemErrors(t *testing.T) {
	h := setupHandlers(t)
	createItem(t, h, "Milk", "Dairy")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"empty name", `{"name":"  "}`, http.StatusBadRequest},
		{"duplicate", `{"name":"milk","category":"DAIRY"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h.item.Create, http.MethodPost, "/api/items", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	w := do(h.item.Create, http.MethodPost, "/api/items", `{"name":"milk","category":"dairy"}`)
	resp := decode[map[string]string](t, w)
	if !strings.Contains(resp["error"], `"milk"`) || !strings.Contains(resp["error"], `"dairy"`) {
		t.Errorf("duplicate message = %q", resp["error"])
	}
}

func TestCreateItemSuggest(t *testing.T) {
	h := setupHandlers(t)
	w := do(h.item.Create, http.MethodPost, "/api/items", `{"name":"whole milk","suggest":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if item := decode[model.Item](t, w); item.Category != "Dairy" {
		t.Errorf("category = %q, want Dairy", item.Category)
	}

	resp := decode[map[string]string](t, do(h.item.Suggest, http.MethodGet, "/api/items/suggest?name=widget", ""))
	if resp["category"] != model.DefaultCategory {
		t.Errorf("suggest = %q", resp["category"])
	}
}

func TestUpdateToggleDeleteItem(t *testing.T) {
	h := setupHandlers(t)
	milk := createItem(t, h, "Milk", "Dairy")

	w := do(h.item.Update, http.MethodPut, "/", `{"name":"Oat milk","category":"Dairy"}`, "id", idStr(milk.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	if got := decode[model.Item](t, w); got.Name != "Oat milk" {
		t.Errorf("name = %q", got.Name)
	}

	w = do(h.item.Update, http.MethodPut, "/", `{"name":"x","category":"y"}`, "id", "999")
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", w.Code)
	}
	w = do(h.item.Update, http.MethodPut, "/", `{}`, "id", "abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}

	w = do(h.item.Toggle, http.MethodPost, "/", "", "id", idStr(milk.ID))
	if got := decode[model.Item](t, w); !got.IsActive {
		t.Error("toggle should activate")
	}

	for range 2 {
		w = do(h.item.Delete, http.MethodDelete, "/", "", "id", idStr(milk.ID))
		if w.Code != http.StatusNoContent {
			t.Errorf("delete status = %d, want 204", w.Code)
		}
	}
}

func TestBulkItemEndpoints(t *testing.T) {
	h := setupHandlers(t)
	createItem(t, h, "Milk", "Dairy")
	createItem(t, h, "Cheese", "Dairy")
	createItem(t, h, "Bread", "Bakery")

	resp := decode[countResponse](t, do(h.item.SelectAll, http.MethodPost, "/api/items/select-all?q=dairy", ""))
	if resp.Count != 2 {
		t.Errorf("select-all count = %d, want 2", resp.Count)
	}
	resp = decode[countResponse](t, do(h.item.ClearAll, http.MethodPost, "/api/items/clear-all", ""))
	if resp.Count != 2 {
		t.Errorf("clear-all count = %d, want 2", resp.Count)
	}
	resp = decode[countResponse](t, do(h.item.DeleteAll, http.MethodDelete, "/api/items", ""))
	if resp.Count != 3 {
		t.Errorf("delete-all count = %d, want 3", resp.Count)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	h := setupHandlers(t)
	createItem(t, h, "Baguette", "Bakery")
	createItem(t, h, "Milk", "Dairy")

	cats := decode[[]string](t, do(h.category.List, http.MethodGet, "/api/categories", ""))
	if len(cats) != 2 || cats[0] != "Bakery" {
		t.Errorf("categories = %v", cats)
	}

	w := do(h.category.Rename, http.MethodPut, "/", `{"name":"dairy"}`, "name", "Bakery")
	if w.Code != http.StatusConflict {
		t.Errorf("rename onto existing status = %d, want 409", w.Code)
	}
	w = do(h.category.Rename, http.MethodPut, "/", `{"name":"Bread"}`, "name", "Bakery")
	if got := decode[countResponse](t, w); got.Count != 1 {
		t.Errorf("renamed %d, want 1", got.Count)
	}

	w = do(h.category.Delete, http.MethodDelete, "/", "", "name", "Bread")
	if got := decode[countResponse](t, w); got.Count != 1 {
		t.Errorf("deleted %d, want 1", got.Count)
	}
}

func TestSessionEndpoints(t *testing.T) {
	h := setupHandlers(t)
	milk := createItem(t, h, "Milk", "Dairy")
	bread := createItem(t, h, "Bread", "Bakery")
	do(h.item.Toggle, http.MethodPost, "/", "", "id", idStr(milk.ID))
	do(h.item.Toggle, http.MethodPost, "/", "", "id", idStr(bread.ID))

	w := do(h.session.AddNote, http.MethodPost, "/", `{"item_id":`+idStr(milk.ID)+`,"note":"semi-skimmed"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add note status = %d: %s", w.Code, w.Body.String())
	}
	notes := decode[[]model.SessionNote](t, do(h.session.ListNotes, http.MethodGet, "/", ""))
	if len(notes) != 1 {
		t.Errorf("notes = %+v", notes)
	}

	w = do(h.session.ToggleCart, http.MethodPost, "/", "", "id", idStr(milk.ID))
	if got := decode[map[string]any](t, w); got["in_cart"] != true {
		t.Errorf("toggle cart = %v", got)
	}

	sess := decode[sessionResponse](t, do(h.session.Get, http.MethodGet, "/", ""))
	if sess.Progress.InCart != 1 || sess.Progress.Total != 2 || len(sess.Items) != 2 {
		t.Errorf("session = %+v", sess)
	}

	w = do(h.session.Share, http.MethodGet, "/", "")
	if got := w.Body.String(); got != "🛒 Shopping List\n\n*Bakery*\n• Bread" {
		t.Errorf("share text = %q", got)
	}
	w = do(h.session.Export, http.MethodGet, "/", "")
	if !strings.HasPrefix(w.Body.String(), "SHOPLIST_V1:") {
		t.Errorf("export = %q", w.Body.String())
	}

	summary := decode[shopping.SessionSummary](t, do(h.session.Complete, http.MethodPost, "/", ""))
	if summary.Deactivated != 2 || summary.NotesCleared != 1 {
		t.Errorf("summary = %+v", summary)
	}

	w = do(h.session.AddNote, http.MethodPost, "/", `{"item_id":`+idStr(milk.ID)+`,"note":"late"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("note on inactive item status = %d, want 400", w.Code)
	}
}

func TestBackupEndpoints(t *testing.T) {
	h := setupHandlers(t)
	createItem(t, h, "Milk", "Dairy")

	backupStr := do(h.transfer.ExportBackup, http.MethodGet, "/", "").Body.String()
	if !strings.HasPrefix(backupStr, "SHOPLIST_DB_V1_GZIP:") {
		t.Fatalf("backup = %q", backupStr)
	}

	w := do(h.transfer.ImportBackup, http.MethodPost, "/", "WRONG:"+backupStr)
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong tag status = %d, want 400", w.Code)
	}

	createItem(t, h, "Bread", "Bakery")
	w = do(h.transfer.ImportBackup, http.MethodPost, "/", backupStr)
	if got := decode[map[string]int](t, w); got["imported"] != 1 {
		t.Errorf("imported = %v", got)
	}
	items := decode[[]model.Item](t, do(h.item.List, http.MethodGet, "/", ""))
	if len(items) != 1 || items[0].Name != "Milk" {
		t.Errorf("items after import = %+v", items)
	}
}

func TestCSVEndpoints(t *testing.T) {
	h := setupHandlers(t)

	w := do(h.transfer.CSVTemplate, http.MethodGet, "/", "")
	if w.Body.String() != "item_name,category\n" {
		t.Errorf("template = %q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".csv") {
		t.Errorf("content disposition = %q", cd)
	}

	w = do(h.transfer.ImportCSV, http.MethodPost, "/", "item_name,category\nMilk,Dairy\n")
	if got := decode[map[string]any](t, w); got["imported"] != float64(1) {
		t.Errorf("raw import = %v", got)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "items.csv")
	io.WriteString(fw, "item_name,category\nmilk,dairy\nEggs,Dairy\n")
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.transfer.ImportCSV(rec, r)
	got := decode[map[string]any](t, rec)
	if got["imported"] != float64(1) || got["skipped"] != float64(1) {
		t.Errorf("multipart import = %v", got)
	}

	w = do(h.transfer.ImportCSV, http.MethodPost, "/", "name\nMilk\n")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing header status = %d, want 400", w.Code)
	}
}
