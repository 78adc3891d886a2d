package sim

import "strings"

// NameMustBeValid panics if the name cannot be used to identify a queue or a
// generator. Names must be non-empty and must not contain characters that
// cannot appear in recorded output (spaces, quotes, dots).
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	invalidChars := []string{
		" ", "\t", "\n", "\"", "'", ".",
	}

	for _, c := range invalidChars {
		if strings.Contains(name, c) {
			panic("name " + name + " must not contain " + c)
		}
	}
}
