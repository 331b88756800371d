// Package sqlitepath resolves where the translation history database lives.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/nihongo/pkg/dotdir"
)

// FileName is the history database file inside a .nihongo/ directory.
const FileName = "history.db"

// ResolveSQLitePath picks the history database path. Order of precedence:
//  1. Provided override (flag, env or config value)
//  2. NIHONGO_SQLITE
//  3. history.db inside an explicit config dir
//  4. The first existing candidate: ./.nihongo, $XDG_DATA_HOME/nihongo, ~/.nihongo
//  5. history.db inside the resolved .nihongo/ directory, created if needed
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("NIHONGO_SQLITE")); envPath != "" {
		return envPath, nil
	}

	if configDir != "" {
		return filepath.Join(configDir, FileName), nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return dotdir.NewManager().Path("", FileName)
}

func sqliteCandidates() []string {
	candidates := []string{
		filepath.Join(dotdir.DirName, FileName),
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "nihongo", FileName))
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, dotdir.DirName, FileName))
	}

	return candidates
}
