package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/goshop/internal/model"
)

type cli struct {
	t  *testing.T
	db string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, db: filepath.Join(t.TempDir(), "goshop.db")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--db", c.db, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "goshop %s", strings.Join(args, " "))
	return out
}

func (c *cli) addItem(name, category string) model.Item {
	c.t.Helper()
	out := c.mustRun("--json", "item", "add", name, "--category", category)
	var item model.Item
	require.NoError(c.t, json.Unmarshal([]byte(out), &item))
	return item
}

func TestVersionSkipsDatabase(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("version")
	assert.Equal(t, "goshop dev\n", out)
	_, err := os.Stat(c.db)
	assert.True(t, os.IsNotExist(err), "version must not create the database")
}

func TestItemAddAndList(t *testing.T) {
	c := newCLI(t)
	milk := c.addItem("Milk", "Dairy")
	assert.Equal(t, "Milk", milk.Name)
	assert.Equal(t, "Dairy", milk.Category)
	assert.False(t, milk.IsActive)

	out := c.mustRun("item", "add", "Bananas", "--suggest")
	assert.Contains(t, out, `"Produce"`)

	out = c.mustRun("item", "list")
	assert.Contains(t, out, "Dairy (1)")
	assert.Contains(t, out, "Milk")
	assert.Contains(t, out, "Produce (1)")

	out = c.mustRun("item", "list", "--query", "milk")
	assert.Contains(t, out, "Found 1 item(s)")
	assert.NotContains(t, out, "Bananas")
}

func TestItemAddRejectsDuplicate(t *testing.T) {
	c := newCLI(t)
	c.addItem("Milk", "Dairy")

	_, err := c.run("item", "add", "milk", "--category", "dairy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestItemToggleAndSelectAll(t *testing.T) {
	c := newCLI(t)
	milk := c.addItem("Milk", "Dairy")
	c.addItem("Bread", "Bakery")

	out := c.mustRun("item", "toggle", itoa(milk.ID))
	assert.Contains(t, out, "Milk selected for shopping")

	out = c.mustRun("item", "select-all")
	assert.Contains(t, out, "1 items selected")

	out = c.mustRun("item", "clear-all", "--query", "bread")
	assert.Contains(t, out, "1 items removed from shopping list")
}

func TestItemUpdateKeepsUnsetFields(t *testing.T) {
	c := newCLI(t)
	milk := c.addItem("Milk", "Dairy")

	out := c.mustRun("item", "update", itoa(milk.ID), "--name", "Oat Milk")
	assert.Contains(t, out, `"Oat Milk" in "Dairy"`)
}

func TestDeleteAllRequiresConfirmation(t *testing.T) {
	c := newCLI(t)
	c.addItem("Milk", "Dairy")

	_, err := c.run("item", "delete-all")
	require.ErrorIs(t, err, errNotConfirmed)

	out := c.mustRun("item", "delete-all", "--yes")
	assert.Contains(t, out, "1 items deleted")
}

func TestInvalidID(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("item", "toggle", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestCategoryRenameAndDelete(t *testing.T) {
	c := newCLI(t)
	c.addItem("Milk", "Dairy")
	c.addItem("Cheese", "Dairy")
	c.addItem("Bread", "Bakery")

	out := c.mustRun("category", "rename", "Dairy", "Fridge")
	assert.Contains(t, out, `Category renamed from "Dairy" to "Fridge"`)

	out = c.mustRun("category", "list")
	assert.Equal(t, "Bakery\nFridge\n", out)

	_, err := c.run("category", "rename", "Fridge", "bakery")
	require.Error(t, err)

	out = c.mustRun("category", "delete", "Fridge", "--yes")
	assert.Contains(t, out, "2 items deleted")
}

func TestSessionFlow(t *testing.T) {
	c := newCLI(t)
	milk := c.addItem("Milk", "Dairy")
	bread := c.addItem("Bread", "Bakery")
	c.mustRun("item", "select-all")

	out := c.mustRun("session", "show", "--in-cart", itoa(milk.ID))
	assert.Contains(t, out, "1 / 2 in cart")

	out = c.mustRun("session", "share", "--in-cart", itoa(milk.ID))
	assert.Contains(t, out, "🛒 Shopping List")
	assert.Contains(t, out, "• Bread")
	assert.NotContains(t, out, "Milk")

	out = c.mustRun("session", "note", itoa(bread.ID), "sourdough")
	assert.Contains(t, out, "Note 1 added")

	out = c.mustRun("session", "notes", itoa(bread.ID))
	assert.Contains(t, out, "sourdough")

	out = c.mustRun("session", "export")
	assert.True(t, strings.HasPrefix(out, "SHOPLIST_V1:"), out)

	out = c.mustRun("session", "complete")
	assert.Contains(t, out, "2 items deselected, 1 notes cleared")

	out = c.mustRun("session", "show")
	assert.Contains(t, out, "No items selected for shopping.")
}

func TestSessionCartRejectsInactiveItem(t *testing.T) {
	c := newCLI(t)
	milk := c.addItem("Milk", "Dairy")

	_, err := c.run("session", "show", "--in-cart", itoa(milk.ID))
	require.Error(t, err)
}

func TestBackupRoundTrip(t *testing.T) {
	src := newCLI(t)
	src.addItem("Milk", "Dairy")
	src.addItem("Bread", "Bakery")

	file := filepath.Join(t.TempDir(), "backup.txt")
	src.mustRun("backup", "export", "--out", file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "SHOPLIST_DB_V1_GZIP:"))

	dst := newCLI(t)
	dst.addItem("Eggs", "Dairy")

	_, err = dst.run("backup", "import", file)
	require.ErrorIs(t, err, errNotConfirmed)

	out := dst.mustRun("backup", "import", file, "--yes")
	assert.Contains(t, out, "Backup restored: 2 items")

	out = dst.mustRun("item", "list")
	assert.Contains(t, out, "Milk")
	assert.NotContains(t, out, "Eggs")
}

func TestSealedBackupRoundTrip(t *testing.T) {
	src := newCLI(t)
	src.addItem("Milk", "Dairy")

	file := filepath.Join(t.TempDir(), "backup.bin")
	src.mustRun("backup", "export", "--out", file, "--passphrase", "hunter2")

	dst := newCLI(t)
	_, err := dst.run("backup", "import", file, "--yes", "--passphrase", "wrong")
	require.Error(t, err)

	out := dst.mustRun("backup", "import", file, "--yes", "--passphrase", "hunter2")
	assert.Contains(t, out, "Backup restored: 1 items")
}

func TestCSVImportAndTemplate(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("csv", "template")
	assert.Equal(t, "item_name,category\n", out)

	file := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(file, []byte("item_name,category\nMilk,Dairy\nBread,Bakery\n"), 0o600))

	out = c.mustRun("csv", "import", file)
	assert.Contains(t, out, "Successfully imported 2 items")

	out = c.mustRun("csv", "import", file)
	assert.Contains(t, out, "already exist")
}

func TestItemUpdateMissing(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("item", "update", "42", "--name", "Milk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item not found")
}
