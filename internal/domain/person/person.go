// Package person models the person directory entries consumed by
// person-aware fusion and the query parsing that detects a leading
// person reference.
package person

// Person is a directory entry: a known person within one owner's library.
// Identity is nil until the person has a trained identity vector.
type Person struct {
	id       string
	name     string
	identity []float32
}

// New creates a person directory entry.
func New(id, name string, identity []float32) Person {
	return Person{id: id, name: name, identity: identity}
}

// ID returns the person identifier.
func (p Person) ID() string { return p.id }

// Name returns the display name.
func (p Person) Name() string { return p.name }

// Identity returns the identity vector, or nil when not yet trained.
func (p Person) Identity() []float32 { return p.identity }

// Trained reports whether the person has a searchable identity vector.
func (p Person) Trained() bool { return len(p.identity) > 0 }

// Match is the outcome of parsing a person reference out of a query.
// Residual is the query text with the matched span removed.
type Match struct {
	Person   Person
	Residual string
}
