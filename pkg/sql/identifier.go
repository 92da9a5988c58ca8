package sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ViewPrefix is prepended to a segment identifier to form its view name.
const ViewPrefix = "segment_"

// viewNamePattern matches view names produced by SegmentViewName: the fixed
// prefix followed by a canonical UUID.
var viewNamePattern = regexp.MustCompile(`^segment_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SegmentViewName derives the view name for a segment identifier. The
// identifier must be a UUID; anything else is rejected before it can reach
// DDL or SELECT interpolation.
func SegmentViewName(segmentID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(segmentID))
	if err != nil {
		return "", fmt.Errorf("invalid segment identifier %q: %w", segmentID, err)
	}
	return ViewPrefix + id.String(), nil
}

// ValidateViewName checks that a caller-supplied view name matches the
// pattern produced by SegmentViewName. Any other input must be rejected
// rather than interpolated unchecked.
func ValidateViewName(viewName string) error {
	if !viewNamePattern.MatchString(viewName) {
		return fmt.Errorf("invalid view name %q: must match %s<uuid>", viewName, ViewPrefix)
	}
	return nil
}
