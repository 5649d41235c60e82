package completionhelp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalletNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alice.bolt", "alice_connections.bolt", "faber.bolt", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.bolt"), 0700))

	require.ElementsMatch(t, []string{"alice", "faber"}, WalletNames(dir))
	require.Empty(t, WalletNames(filepath.Join(dir, "missing")))
	require.Len(t, WalletLocations(), 1)
}
