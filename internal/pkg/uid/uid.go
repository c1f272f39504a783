// Package uid provides small generators for unique identifiers.
package uid

// NumberID generates numeric unique identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string unique identifiers.
type StringID interface {
	Generate() string
}
