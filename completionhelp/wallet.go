package completionhelp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/golang/glog"
)

// WalletLocations returns the default wallet directory.
func WalletLocations() []string {
	return []string{utils.DefaultConfig().WalletPath}
}

// WalletNames returns the names of the wallet files found from the
// directories. The connection databases aren't wallets.
func WalletNames(dirs ...string) (names []string) {
	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.bolt"))
		if err != nil {
			glog.Warningln("wallet names:", err)
			continue
		}
		for _, f := range files {
			name := strings.TrimSuffix(filepath.Base(f), ".bolt")
			if strings.HasSuffix(name, "_connections") {
				continue
			}
			if st, err := os.Stat(f); err == nil && st.Mode().IsRegular() {
				names = append(names, name)
			}
		}
	}
	return names
}
