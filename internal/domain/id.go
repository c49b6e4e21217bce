package domain

import "strings"

// CanonicalID shortens a QuakeML publicID to the segment after its last "/".
// Ids without a "/" are returned unchanged.
func CanonicalID(publicID string) string {
	if i := strings.LastIndex(publicID, "/"); i >= 0 {
		return publicID[i+1:]
	}
	return publicID
}
