package update

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	// listingPattern finds builds embedded in listing text.
	listingPattern = regexp.MustCompile(`Build (\d+-jextract\+\d+(?:-\d+)?)`)
	// storedPattern matches the bare pinned form.
	storedPattern = regexp.MustCompile(`^(\d+)-jextract\+(\d+)(?:-(\d+))?$`)
)

// Identifier is one jextract build reference.
type Identifier struct {
	Major     int
	MainBuild int
	SubBuild  int
	Raw       string // canonical persisted form, e.g. "25-jextract+2-4"
}

func (id Identifier) String() string {
	return id.Raw
}

// Compare orders two identifiers by (MainBuild, SubBuild).
// Returns -1 if id < other, 0 if equal, 1 if id > other. Major is not compared.
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.MainBuild < other.MainBuild:
		return -1
	case id.MainBuild > other.MainBuild:
		return 1
	case id.SubBuild < other.SubBuild:
		return -1
	case id.SubBuild > other.SubBuild:
		return 1
	}
	return 0
}

// Format renders the canonical identifier string for a build triple.
func Format(major, mainBuild, subBuild int) string {
	return fmt.Sprintf("%d-jextract+%d-%d", major, mainBuild, subBuild)
}

// ParseStored parses the bare pinned form "<major>-jextract+<build>[-<sub>]".
// The whole string must match; surrounding whitespace is not accepted.
func ParseStored(raw string) (Identifier, bool) {
	m := storedPattern.FindStringSubmatch(raw)
	if m == nil {
		return Identifier{}, false
	}
	return fromGroups(raw, m[1], m[2], m[3])
}

// ScanListing returns every build mentioned in listing text, in document order.
// Matches whose numbers do not fit an int are skipped.
func ScanListing(text string) []Identifier {
	matches := listingPattern.FindAllStringSubmatch(text, -1)
	out := make([]Identifier, 0, len(matches))
	for _, m := range matches {
		parts := storedPattern.FindStringSubmatch(m[1])
		if parts == nil {
			continue
		}
		id, ok := fromGroups(m[1], parts[1], parts[2], parts[3])
		if !ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SelectCandidate returns the first identifier targeting major.
func SelectCandidate(candidates []Identifier, major int) (Identifier, bool) {
	for _, c := range candidates {
		if c.Major == major {
			return c, true
		}
	}
	return Identifier{}, false
}

func fromGroups(raw, major, mainBuild, subBuild string) (Identifier, bool) {
	var err error
	id := Identifier{Raw: raw}
	if id.Major, err = strconv.Atoi(major); err != nil {
		return Identifier{}, false
	}
	if id.MainBuild, err = strconv.Atoi(mainBuild); err != nil {
		return Identifier{}, false
	}
	if subBuild != "" {
		if id.SubBuild, err = strconv.Atoi(subBuild); err != nil {
			return Identifier{}, false
		}
	}
	return id, true
}
