package callgrind

// interner deduplicates Positions by value so that two Entries sharing the
// same (object, source, symbol) triple share the exact same *Position.
//
// The spec permits an O(N) linear scan; we keep the arena (ordered slice,
// for deterministic iteration and index-based access) alongside a hash
// index keyed by the value tuple; a hash table keyed by the tuple can be
// substituted for the linear scan without altering observable behavior.
type interner struct {
	arena []*Position
	index map[Position]*Position
}

func newInterner() *interner {
	return &interner{index: make(map[Position]*Position)}
}

// intern returns the canonical *Position for (object, source, symbol),
// creating and arena-storing it on first observation.
func (in *interner) intern(object, source, symbol string) *Position {
	key := Position{Object: object, Source: source, Symbol: symbol}
	if p, ok := in.index[key]; ok {
		return p
	}
	p := &Position{Object: object, Source: source, Symbol: symbol}
	in.index[key] = p
	in.arena = append(in.arena, p)
	return p
}

func (in *interner) count() int {
	return len(in.arena)
}
