package importer

import (
	"math/rand"
	"strings"
	"time"
)

// Fixture comments were generated with synthetic author ids that can exceed
// the highest real user pk. Ids above maxKnownAuthorID are redrawn from a
// pool of ids known to resolve, so membership lookup has a chance to
// succeed. This reproduces the fixture generator's behavior exactly; it is
// not a general id-validation rule.
const (
	maxKnownAuthorID = 50
	authorPoolMin    = 5
	authorPoolMax    = 40
)

// remapAuthorID returns id unchanged when it is within the known range,
// otherwise a pseudo-random id drawn uniformly from [authorPoolMin,
// authorPoolMax].
func remapAuthorID(id int, rng *rand.Rand) int {
	if id > maxKnownAuthorID {
		return authorPoolMin + rng.Intn(authorPoolMax-authorPoolMin+1)
	}
	return id
}

const naiveTimestampLayout = "2006-01-02T15:04:05"

// parseTimestamp normalizes an ISO-8601 string to an offset-aware instant.
// A trailing "Z" is rewritten to an explicit "+00:00" offset before parsing;
// strings without any offset are interpreted in loc. Empty input yields the
// zero time. The normalization is one-way: the original string form is never
// reproduced.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	s = strings.Replace(s, "Z", "+00:00", 1)
	if t, err := time.Parse("2006-01-02T15:04:05-07:00", s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(naiveTimestampLayout, s, loc)
}
