package diff

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
)

// MergePatch returns the JSON merge patch (RFC 7386) turning the JSON
// rendering from into to.
func MergePatch(from, to []byte) ([]byte, error) {
	p, err := jsonpatch.CreateMergePatch(from, to)
	if err != nil {
		return nil, fmt.Errorf("creating merge patch: %w", err)
	}
	return p, nil
}

// ApplyMergePatch applies a patch produced by MergePatch to doc.
func ApplyMergePatch(doc, patch []byte) ([]byte, error) {
	res, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("applying merge patch: %w", err)
	}
	return res, nil
}
