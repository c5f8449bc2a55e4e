package snapshots

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	playerDirPrefix = "player_"
	summaryFileName = "all_days.json"
	manifestName    = "manifest.json"
)

// PlayerDir is the per-player directory under the data root.
func PlayerDir(dataDir, playerID string) string {
	return filepath.Join(dataDir, playerDirPrefix+playerID)
}

// DayPath builds the path of one raw day document.
func DayPath(dataDir, playerID string, day int) string {
	return filepath.Join(PlayerDir(dataDir, playerID), fmt.Sprintf("day_%d.json", day))
}

// SummaryPath builds the path of the per-player multi-day summary.
func SummaryPath(dataDir, playerID string) string {
	return filepath.Join(PlayerDir(dataDir, playerID), summaryFileName)
}

// ValidatePlayerID rejects ids that would escape the per-player directory.
func ValidatePlayerID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid player id %q", id)
	}
	return nil
}
