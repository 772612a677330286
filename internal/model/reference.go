package model

// Kind tells whether a reference denotes one item or an ordered collection
type Kind string

const (
	KindVideo      Kind = "video"
	KindCollection Kind = "playlist"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// ContentReference is a classified, immutable pointer to remote content.
// Kind is derived from the URL shape only.
type ContentReference struct {
	URL  string
	Kind Kind
}

// IsCollection reports whether the reference points at a playlist
func (r ContentReference) IsCollection() bool {
	return r.Kind == KindCollection
}
