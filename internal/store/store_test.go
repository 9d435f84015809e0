package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dumps", "movements.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveLoad(t *testing.T) {
	s := openTestStore(t)

	charge := 45.0
	movements := []models.Movement{
		{
			OperationDate:  "2025-07-01",
			SettlementDate: "2025-07-02",
			Description:    "COFFEE SHOP",
			Charge:         &charge,
			Account:        "5516",
			Currency:       "MXN",
			SourceFile:     "BBVA 5516 MXN.pdf",
			Page:           2,
		},
	}

	require.NoError(t, s.Save("BBVA 5516 MXN.pdf", movements))

	loaded, err := s.Load("BBVA 5516 MXN.pdf")
	require.NoError(t, err)
	assert.Equal(t, movements, loaded)
}

func TestStoreLoadUnknownSource(t *testing.T) {
	s := openTestStore(t)

	loaded, err := s.Load("never-saved.pdf")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreSaveReplaces(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("a.pdf", []models.Movement{{Description: "FIRST"}}))
	require.NoError(t, s.Save("a.pdf", []models.Movement{{Description: "SECOND"}}))

	loaded, err := s.Load("a.pdf")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "SECOND", loaded[0].Description)
}

func TestStoreClear(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("a.pdf", []models.Movement{{Description: "X"}}))
	require.NoError(t, s.Clear("a.pdf"))

	loaded, err := s.Load("a.pdf")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Unknown source is a no-op.
	assert.NoError(t, s.Clear("never-saved.pdf"))
}

func TestStoreList(t *testing.T) {
	s := openTestStore(t)

	sources, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, sources)

	require.NoError(t, s.Save("b.pdf", nil))
	require.NoError(t, s.Save("a.pdf", nil))

	sources, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, sources) // bbolt iterates in key order
}
