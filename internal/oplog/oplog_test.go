package oplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Action:    "txn.add",
		Entity:    "transaction",
		EntityID:  "txn-001",
		Details:   "Groceries -86.23",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	data, err := os.ReadFile(filepath.Join(dir, "oplog.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "txn.add", entries[0].Action)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Action = "assign.set"
	e2.Entity = "assignment"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "txn.add", entries[0].Action)
	assert.Equal(t, "assign.set", entries[1].Action)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.Action, got.Action)
	assert.Equal(t, original.Entity, got.Entity)
	assert.Equal(t, original.EntityID, got.EntityID)
	assert.Equal(t, original.Details, got.Details)
}

func TestRead_NoFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_BadRow(t *testing.T) {
	_, err := UnmarshalEntry([]string{"only", "three", "fields"})
	assert.ErrorContains(t, err, "expected 5 fields")

	_, err = UnmarshalEntry([]string{"not-a-time", "a", "b", "c", "d"})
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestDetailsWithCommas(t *testing.T) {
	dir := t.TempDir()
	e := testEntry()
	e.Details = `transfer Checking -> Savings, 300.00, "monthly"`
	require.NoError(t, Append(dir, []Entry{e}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.Details, entries[0].Details)
}
