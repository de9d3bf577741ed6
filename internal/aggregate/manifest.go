package aggregate

import (
	"regexp"
	"strings"
)

// ProgramEntry is one declared program of a source's content manifest.
type ProgramEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Manifest is the parsed content-manifest sheet: the declared program list
// plus the source display name found in its free text.
type Manifest struct {
	SourceName string
	Programs   []ProgramEntry
}

// minNameLineLength filters headings from stray short lines when looking for
// the source display name.
const minNameLineLength = 10

var codeLinePattern = regexp.MustCompile(`^(\d+)\s*-\s*(.*)$`)

// ParseManifest reads the free-text lines of the manifest sheet. Lines shaped
// like "123 - Some Name" declare programs; the first sufficiently long line
// that is not a code line becomes the source display name.
func ParseManifest(rows [][]string) Manifest {
	manifest := Manifest{}

	for _, row := range rows {
		line := strings.TrimSpace(strings.Join(row, " "))
		if line == "" {
			continue
		}

		if m := codeLinePattern.FindStringSubmatch(line); m != nil {
			manifest.Programs = append(manifest.Programs, ProgramEntry{
				Code: m[1],
				Name: strings.TrimSpace(m[2]),
			})
			continue
		}

		if manifest.SourceName == "" && len(line) > minNameLineLength && !startsWithDigit(line) {
			manifest.SourceName = strings.ToUpper(line)
		}
	}

	return manifest
}

// MatchProgram resolves which declared program a sheet title belongs to. A
// code matches when it appears as a leading token or bounded by non-digit
// characters, so code "1" never matches title "10_Algo".
func MatchProgram(title string, programs []ProgramEntry) (ProgramEntry, bool) {
	for _, entry := range programs {
		if entry.Code == "" {
			continue
		}
		pattern := regexp.MustCompile(`(^|[^0-9])` + regexp.QuoteMeta(entry.Code) + `([^0-9]|$)`)
		if pattern.MatchString(title) {
			return entry, true
		}
	}
	return ProgramEntry{}, false
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
