// Package flags provides reusable flag types for CLI commands.
package flags

import "strings"

// StringSlice is a repeatable string flag. Unlike pflag's StringSlice it
// never splits on commas, so values may contain them.
type StringSlice []string

func (s *StringSlice) String() string {
	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *StringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Type specifies the type label for Cobra flags.
func (s *StringSlice) Type() string {
	return "stringArray"
}

// Reset empties the slice.
func (s *StringSlice) Reset() {
	*s = nil
}
