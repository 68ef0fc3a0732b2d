package streamparse

// Policy states how eagerly a successful match is trusted as final.
//
// Under Lazy (the default) a match that consumes the whole buffer is held
// back: a greedy grammar might still extend it when more input arrives. It
// becomes final either when a later attempt leaves a non-empty leftover or
// when the source is exhausted. Under Eager every match is final immediately.
//
// The policy is fixed for the lifetime of one engine invocation.
type Policy int

const (
	// Lazy holds back matches that end exactly at the buffer boundary.
	Lazy Policy = iota
	// Eager confirms every match immediately.
	Eager
)

func (p Policy) String() string {
	switch p {
	case Lazy:
		return "lazy"
	case Eager:
		return "eager"
	default:
		return "unknown"
	}
}
