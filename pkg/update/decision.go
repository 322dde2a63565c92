package update

import (
	"fmt"
	"strings"
)

type Reason string

const (
	ReasonNoCompatibleBuild   Reason = "no-compatible-build"                 // Listing has no build for the major
	ReasonNoPriorVersion      Reason = "no-prior-version"                    // Nothing pinned yet
	ReasonUnparseableReplaced Reason = "unparseable-stored-version-replaced" // Pinned value is garbage, replace it
	ReasonNewer               Reason = "newer"                               // Listing build is newer than the pin
	ReasonAlreadyUpToDate     Reason = "already-up-to-date"                  // Listing build equals the pin
	ReasonRemoteOlder         Reason = "remote-older-than-stored"            // Refuse to regress the pin
)

// Decision is the outcome of one resolution run.
type Decision struct {
	ShouldUpdate bool
	Chosen       *Identifier // nil only for ReasonNoCompatibleBuild
	Reason       Reason
}

// Resolve decides whether the pinned version should move to the first build in
// listing that targets targetMajor.
//
// listing:     raw listing text (HTML is fine, only "Build ..." substrings matter)
// targetMajor: toolchain major version the build must target
// storedRaw:   currently pinned value, "" when nothing is pinned
//
// Resolve never fails; every outcome is carried by Decision.Reason.
func Resolve(listing string, targetMajor int, storedRaw string) Decision {
	chosen, ok := SelectCandidate(ScanListing(listing), targetMajor)
	if !ok {
		return Decision{Reason: ReasonNoCompatibleBuild}
	}

	stored := strings.TrimSpace(storedRaw)
	if stored == "" {
		return Decision{ShouldUpdate: true, Chosen: &chosen, Reason: ReasonNoPriorVersion}
	}

	current, ok := ParseStored(stored)
	if !ok {
		if chosen.Raw != stored {
			return Decision{ShouldUpdate: true, Chosen: &chosen, Reason: ReasonUnparseableReplaced}
		}
		return Decision{Chosen: &chosen, Reason: ReasonAlreadyUpToDate}
	}

	switch chosen.Compare(current) {
	case 1:
		return Decision{ShouldUpdate: true, Chosen: &chosen, Reason: ReasonNewer}
	case 0:
		return Decision{Chosen: &chosen, Reason: ReasonAlreadyUpToDate}
	default:
		return Decision{Chosen: &chosen, Reason: ReasonRemoteOlder}
	}
}

// IsWarning reports whether a reason deserves warning-level reporting.
func (r Reason) IsWarning() bool {
	return r == ReasonNoCompatibleBuild || r == ReasonRemoteOlder
}

// DescribeDecision returns a human-readable status line.
func DescribeDecision(d Decision, stored string) string {
	chosen := ""
	if d.Chosen != nil {
		chosen = d.Chosen.Raw
	}
	switch d.Reason {
	case ReasonNoCompatibleBuild:
		return "No compatible jextract build found in listing"
	case ReasonNoPriorVersion:
		return fmt.Sprintf("No version pinned yet; pinning %s", chosen)
	case ReasonUnparseableReplaced:
		return fmt.Sprintf("Pinned value %q is not a jextract version; replacing with %s", stored, chosen)
	case ReasonNewer:
		return fmt.Sprintf("Updating jextract: %s → %s", stored, chosen)
	case ReasonAlreadyUpToDate:
		return fmt.Sprintf("Already at latest version (%s)", chosen)
	case ReasonRemoteOlder:
		return fmt.Sprintf("Listing build %s is older than pinned %s; keeping pin", chosen, stored)
	default:
		return string(d.Reason)
	}
}
