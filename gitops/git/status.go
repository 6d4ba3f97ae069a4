package git

import (
	"bufio"
	"strings"
)

// StatusEntry is one line of `git status --porcelain`.
type StatusEntry struct {
	// Code is the two-letter XY status (e.g. "??",
	// " M", "A ").
	Code string
	// Path is the file path, the destination path for
	// renames and copies.
	Path string
}

// Untracked reports whether the entry is a new file git
// does not track yet.
func (e StatusEntry) Untracked() bool {
	return e.Code == "??"
}

// ParseStatus parses porcelain v1 output. Blank and
// malformed lines are skipped.
func ParseStatus(out string) []StatusEntry {
	var entries []StatusEntry

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 4 || line[2] != ' ' {
			continue
		}

		path := line[3:]
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+len(" -> "):]
		}

		entries = append(entries, StatusEntry{
			Code: line[:2],
			Path: strings.Trim(path, `"`),
		})
	}

	return entries
}
