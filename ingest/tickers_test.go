package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTickers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers:\n  - aapl\n  - MSFT\n  - ' AAPL '\n  - ''\n  - BRK-B\n"), 0o644))

	tickers, err := LoadTickers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "BRK-B"}, tickers)
}

func TestLoadTickers_Errors(t *testing.T) {
	_, err := LoadTickers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = parseTickers([]byte("tickers: []\n"))
	assert.EqualError(t, err, "no tickers configured")

	_, err = parseTickers([]byte("tickers: [unclosed\n"))
	assert.Error(t, err)
}
