package sbom

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Parse decodes and eagerly validates one CycloneDX document. The
// which argument names the document ("current", "previous", ...) so
// that rejections identify the offending SBOM and field.
func Parse(data []byte, which string) (*SBOM, error) {
	document := new(SBOM)
	err := json.Unmarshal(data, document)
	if err != nil {
		var mismatch *json.UnmarshalTypeError
		if errors.As(err, &mismatch) && len(mismatch.Field) > 0 {
			return nil, fmt.Errorf("invalid %s SBOM: field %q has wrong shape: %w", which, mismatch.Field, err)
		}
		return nil, fmt.Errorf("invalid %s SBOM: %w", which, err)
	}
	return document, Validate(document, which)
}

// Validate rejects documents before they reach the differ.
func Validate(document *SBOM, which string) error {
	if document == nil {
		return fmt.Errorf("invalid %s SBOM: document is missing", which)
	}
	if document.BomFormat != BomFormat {
		return fmt.Errorf("invalid %s SBOM format: expected %q, got %q", which, BomFormat, document.BomFormat)
	}
	if document.Components == nil {
		return fmt.Errorf("invalid %s SBOM: 'components' must be an array", which)
	}
	return nil
}
