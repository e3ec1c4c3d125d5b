package classifier

// Dedup suppresses consecutive redelivery of the same literal chat text.
// The observation layer may hand the same line over more than once; only the
// immediately preceding processed text is remembered, so memory stays O(1).
type Dedup struct {
	last string
	seen bool
}

// Duplicate records the text and reports whether it repeats the previous one.
func (d *Dedup) Duplicate(text string) bool {
	if d.seen && d.last == text {
		return true
	}

	d.last = text
	d.seen = true

	return false
}

// Reset forgets the last processed text.
func (d *Dedup) Reset() {
	d.last = ""
	d.seen = false
}
