package normalization

import "fmt"

// EnumNormalizer wraps a Normalizer with the field name used in messages.
type EnumNormalizer[T comparable] struct {
	normalizer *Normalizer[T]
	enumName   string
}

// NewEnumNormalizer creates an enum normalizer with descriptive error messages.
func NewEnumNormalizer[T comparable](enumName string, values map[string]T, defaultValue T) *EnumNormalizer[T] {
	return &EnumNormalizer[T]{
		normalizer: NewNormalizer(values, defaultValue),
		enumName:   enumName,
	}
}

// Normalize converts raw string to enum value, returning default on invalid input.
func (e *EnumNormalizer[T]) Normalize(raw string) T {
	return e.normalizer.Normalize(raw)
}

// Lookup converts raw string to enum value and reports whether it was recognized.
func (e *EnumNormalizer[T]) Lookup(raw string) (T, bool) {
	return e.normalizer.Lookup(raw)
}

// NormalizeWithValidation converts raw string to enum value with a validation error.
func (e *EnumNormalizer[T]) NormalizeWithValidation(raw string) (T, error) {
	result, err := e.normalizer.NormalizeWithError(raw)
	if err != nil {
		return result, fmt.Errorf("invalid %s: %w", e.enumName, err)
	}
	return result, nil
}

// Suggest returns the closest valid key for a mistyped value.
func (e *EnumNormalizer[T]) Suggest(raw string) string {
	return e.normalizer.Suggest(raw)
}

// ValidValues returns all valid enum keys for documentation/help.
func (e *EnumNormalizer[T]) ValidValues() []string {
	return e.normalizer.ValidKeys()
}
