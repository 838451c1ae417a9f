package vars

const delimiter = "__"

// Variable is a named, ordered collection of candidate substitution values.
// Values are addressed 0-based in file order; order is stable once saved.
type Variable struct {
	Name        string // bare name, no delimiters
	Description string
	Values      []string
}

// Canonical wraps a bare variable name in the prompt token delimiters,
// e.g. "cat_breed" -> "__cat_breed__".
func Canonical(name string) string {
	return delimiter + name + delimiter
}
