// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path diagnostic logging (alloc-light)
//
// Purpose:
//   - Logs infrequent error paths without formatting machinery.
//   - Used only in cold paths: bind/accept failures, connection teardown,
//     shutdown traces.
//
// Notes:
//   - Avoids fmt to keep footprint minimal; plain concatenation only.
//   - Writes go straight to stderr via utils.PrintWarning.
//
// ⚠️ Never invoke in hot loops — use only in failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "main/utils"

// DropError logs an error with a short prefix. A nil err logs the prefix
// alone, which doubles as a cheap trace tag.
//
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs a prefixed one-line diagnostic. Connection state
// changes, startup phases, and similar infrequent events only.
//
//go:inline
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
