package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that could escape the embedded asset
// directories: empty names, path separators, dots, and null bytes.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
