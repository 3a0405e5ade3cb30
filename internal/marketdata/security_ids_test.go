package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityIDs_MissingFileStartsEmpty(t *testing.T) {
	s, err := LoadSecurityIDs(filepath.Join(t.TempDir(), "ids.json"), "NSE_EQ")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Hints("WIPRO").SecurityID)
	assert.Equal(t, "NSE_EQ", s.Hints("WIPRO").ExchangeSegment)
}

func TestSecurityIDs_PutPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")

	s, err := LoadSecurityIDs(path, "NSE_EQ")
	require.NoError(t, err)
	require.NoError(t, s.Put("WIPRO", "3787"))
	require.NoError(t, s.Put("TCS", "11536"))

	reloaded, err := LoadSecurityIDs(path, "NSE_EQ")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "3787", reloaded.Hints("WIPRO").SecurityID)
	assert.Equal(t, "11536", reloaded.Hints("TCS").SecurityID)
}

func TestSecurityIDs_ZeroIDTreatedAsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"WIPRO":"0","TCS":"11536"}`), 0o644))

	s, err := LoadSecurityIDs(path, "NSE_EQ")
	require.NoError(t, err)
	assert.Empty(t, s.Hints("WIPRO").SecurityID, "placeholder id must not reach the provider")
	assert.Equal(t, 1, s.Len())
}

func TestSecurityIDs_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := LoadSecurityIDs(path, "NSE_EQ")
	assert.Error(t, err)
}
