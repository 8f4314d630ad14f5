package errors

import (
	"regexp"
	"unicode"
)

// maxNameLength bounds cell, port and instance names. Exchange formats
// downstream of the flattener truncate or reject longer names.
const maxNameLength = 128

// ValidateName validates a cell, port or instance name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s name %q contains whitespace or control characters", kind, name)
		}
	}

	return nil
}

// layerNameRegex matches process layer names (e.g. "WG_CORE", "slab-90").
var layerNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// ValidateLayerName validates a named process layer from configuration.
func ValidateLayerName(name string) error {
	if err := ValidateName("layer", name); err != nil {
		return err
	}

	if !layerNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid layer name: %q", name)
	}

	return nil
}
