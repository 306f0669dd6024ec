package verify

// Problem kinds reported by Audit.
const (
	MissingOriginal = "missing original"
	Changed         = "changed"
	MissingOutput   = "missing output"
	HashError       = "hash error"
)

type Problem struct {
	Kind     string
	Path     string
	Expected string
	Computed string
	Err      error
}

type Result struct {
	Checked  int
	OK       int
	Problems []Problem
}

type Options struct {
	Algorithm string
	// SkipRehash only checks presence, leaving hashes alone.
	SkipRehash bool
}
