package cfg

// DefaultTripCount is the trip count a loop starts with before any
// unroll-factor rescaling. The original analyzer used 256 but had
// historically used 64; this is exposed as a constant rather than
// baked into the walker so callers can override it.
const DefaultTripCount = 256

// Loop is one natural loop: header, primary footer, any additional
// footers (continue-style back edges), its block set, nesting
// relationships, and its cost-attribution trip count.
type Loop struct {
	ID int

	Header, Footer  *BasicBlock
	AdditionalFooters []*BasicBlock

	NatLoop map[*BasicBlock]bool

	Enclosing   *Loop
	InnerLoops  []*Loop
	NestingLevel int

	TripCount  uint64
	InstrCount int
}

// NewLoop constructs a loop with the given header/primary footer and the
// default trip count. Used by the loop detector when it discovers a new
// back edge.
func NewLoop(id int, header, footer *BasicBlock) *Loop {
	return &Loop{
		ID:        id,
		Header:    header,
		Footer:    footer,
		NatLoop:   map[*BasicBlock]bool{},
		TripCount: DefaultTripCount,
	}
}

// AddFooter records an additional back edge into this loop's header,
// e.g. from a continue statement.
func (l *Loop) AddFooter(b *BasicBlock) {
	l.AdditionalFooters = append(l.AdditionalFooters, b)
}

// AddInnerLoop registers inner as directly nested within l.
func (l *Loop) AddInnerLoop(inner *Loop) {
	l.InnerLoops = append(l.InnerLoops, inner)
}

// HasInnerLoops reports whether l directly encloses any other loop.
func (l *Loop) HasInnerLoops() bool { return len(l.InnerLoops) > 0 }
