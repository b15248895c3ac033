package callgrind

// stitch resolves every outbound call's placeholder target to the
// canonical Entry sharing its position, and installs the reciprocal
// caller back-reference. Calls whose target was never observed as a
// top-level entry keep pointing at their placeholder, which still carries
// a valid Position.
func stitch(entries []*Entry) {
	for _, e := range entries {
		for _, c := range e.Calls {
			target := c.Target
			if target == nil || !target.placeholder {
				continue
			}
			canonical := findByPosition(entries, target.Position)
			if canonical == nil {
				continue
			}
			c.Target = canonical
			addCallerOnce(canonical, e)
		}
	}
}

func findByPosition(entries []*Entry, pos *Position) *Entry {
	for _, e := range entries {
		if e.Position == pos {
			return e
		}
	}
	return nil
}

func addCallerOnce(target, caller *Entry) {
	for _, existing := range target.Callers {
		if existing == caller {
			return
		}
	}
	target.Callers = append(target.Callers, caller)
}
