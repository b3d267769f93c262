package vault

// Record is one saved credential. All fields are free-form: nothing is
// validated or deduplicated, and any combination including all-empty is
// legal.
type Record struct {
	Site     string
	Username string
	Secret   string
	Notes    string
}
