package assets

import (
	"fmt"
	"strings"
)

// MaxAssetNameLength bounds template identifiers.
const MaxAssetNameLength = 64

// ValidateAssetName checks that a template identifier is safe for use as a
// file name. Returns ErrInvalidAssetName if it is empty, too long, or
// contains path separators, dots, or NUL bytes.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAssetName, MaxAssetNameLength)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
