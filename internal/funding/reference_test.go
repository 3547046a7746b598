package funding

import (
	"regexp"
	"testing"
)

var refPattern = regexp.MustCompile(`^(DEP|WTH|TXN)-[0-9A-Z]+-[0-9A-F]{8}$`)

func TestNewReferenceFormat(t *testing.T) {
	for _, prefix := range []string{RefPrefixDeposit, RefPrefixWithdrawal, RefPrefixTransaction} {
		ref := NewReference(prefix)
		if !refPattern.MatchString(ref) {
			t.Errorf("NewReference(%q) = %q, does not match %s", prefix, ref, refPattern)
		}
	}
}

func TestNewReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewReference(RefPrefixTransaction)
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}
