package models

import "fmt"

// Architecture names one of the compared agent architectures.
type Architecture string

const (
	ArchS1 Architecture = "S1" // No division: judgment and execution coupled
	ArchS2 Architecture = "S2" // Weak division: delayed execution, weak structure
	ArchV7 Architecture = "V7" // Full structure: state, structure, execute
)

// Architectures lists the compared architectures in report order.
var Architectures = []Architecture{ArchS1, ArchS2, ArchV7}

// ParseArchitecture maps a case-sensitive name to an Architecture.
func ParseArchitecture(s string) (Architecture, error) {
	a := Architecture(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown architecture %q (valid: S1, S2, V7)", s)
	}
	return a, nil
}

// Valid returns true if the architecture is a recognized value.
func (a Architecture) Valid() bool {
	switch a {
	case ArchS1, ArchS2, ArchV7:
		return true
	}
	return false
}

// Structured reports whether the architecture separates the decision from
// the execution boundary.
func (a Architecture) Structured() bool {
	return a == ArchV7
}

// Description returns the human-readable label used in reports.
func (a Architecture) Description() string {
	switch a {
	case ArchS1:
		return "No Division"
	case ArchS2:
		return "Weak Division"
	case ArchV7:
		return "Full Structure"
	}
	return string(a)
}

// String returns the string representation of the architecture.
func (a Architecture) String() string {
	return string(a)
}
