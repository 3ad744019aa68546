package multihop

import "strings"

// Normalize canonicalizes text for duplicate comparison: lowercase, collapse
// whitespace runs to single spaces, trim. Pure and idempotent.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
