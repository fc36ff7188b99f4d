package diff

// Delta classifies a node of the old tree during a merge.
type Delta int

const (
	Unmodified Delta = iota
	Added
	Changed
	Deleted
)

func (d Delta) String() string {
	switch d {
	case Unmodified:
		return "unmodified"
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	default:
		return "<unknown delta>"
	}
}
