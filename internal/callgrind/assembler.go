package callgrind

// state names the entry assembler's position in the Callgrind grammar.
type state int

const (
	stateIdle state = iota
	stateInEntryPos
	stateInEntryCosts
	stateInCallPos
	stateExpectCallCost
	stateInCallCosts
)

// assembler drives the per-line state machine that turns classified lines
// into committed Entries. The running sub-position vector and the
// compression tables are file-global for the whole parse; the rest of the
// assembler's fields track the sticky position state of whichever Entry or
// Call is currently under construction.
type assembler struct {
	posAxis   []string
	eventAxis []string
	subPos    []uint64

	comp   *compressionTables
	intern *interner

	completed []*Entry

	st state

	// Sticky entry-level position fields, valid once st != stateIdle.
	curOb, curFl, curFn string
	curEntry            *Entry

	// Sticky call-level position fields, valid once st is one of the
	// call states.
	callOb, callSource, callFn string
	curCall                    *Call
}

func newAssembler() *assembler {
	return &assembler{
		comp:   newCompressionTables(),
		intern: newInterner(),
	}
}

// headersSeen reports whether both axis headers have been recorded, a
// prerequisite for any cost line to be accepted.
func (a *assembler) headersSeen() bool {
	return a.posAxis != nil && a.eventAxis != nil
}

// process advances the state machine by one classified line. lineNo is
// 1-based; raw is the original line text, both used only for error
// reporting.
func (a *assembler) process(cl classifiedLine, lineNo int, raw string) error {
	switch cl.kind {
	case kindHeaderPositions:
		if a.st != stateIdle {
			return newParseError(KindUnexpectedLine, lineNo, raw, "positions header after entries have begun")
		}
		a.posAxis = cl.axisNames
		a.subPos = make([]uint64, len(a.posAxis))
		return nil

	case kindHeaderEvents:
		if a.st != stateIdle {
			return newParseError(KindUnexpectedLine, lineNo, raw, "events header after entries have begun")
		}
		a.eventAxis = cl.axisNames
		return nil

	case kindCostPosition:
		return a.handleCostPosition(cl, lineNo, raw)

	case kindFiFePosition:
		return a.handleFiFePosition(cl, lineNo, raw)

	case kindCalledPosition:
		return a.handleCalledPosition(cl, lineNo, raw)

	case kindCostLine:
		return a.handleCostLine(cl, lineNo, raw)

	case kindCallHeader:
		return a.handleCallHeader(cl, lineNo, raw)

	case kindEmpty:
		return a.handleEmpty()

	case kindUnknown:
		return nil // ignored informational line
	}
	return nil
}

func (a *assembler) handleCostPosition(cl classifiedLine, lineNo int, raw string) error {
	switch a.st {
	case stateIdle, stateInEntryPos:
		val, err := a.comp.resolve(cl.posKey, cl.aliasIdx, cl.value, lineNo, raw)
		if err != nil {
			return err
		}
		switch cl.posKey {
		case "ob":
			a.curOb = val
		case "fl":
			a.curFl = val
		case "fn":
			a.curFn = val
		}
		a.st = stateInEntryPos
		return nil
	case stateInEntryCosts:
		// A fresh cost-position line after cost rows begins a brand new
		// entry: commit the one in progress and start over on this line.
		a.commitEntry()
		a.st = stateIdle
		return a.handleCostPosition(cl, lineNo, raw)
	default:
		return newParseError(KindUnexpectedLine, lineNo, raw, "cost-position line inside a call group")
	}
}

func (a *assembler) handleFiFePosition(cl classifiedLine, lineNo int, raw string) error {
	// fi/fe is swallowed: it updates the shared file compression table (via
	// resolve's side effect) but never mutates the owning Entry or Call's
	// recorded position.
	_, err := a.comp.resolve(cl.posKey, cl.aliasIdx, cl.value, lineNo, raw)
	if err != nil {
		return err
	}
	switch a.st {
	case stateInEntryCosts, stateInCallCosts:
		return nil
	default:
		return newParseError(KindUnexpectedLine, lineNo, raw, "fi/fe position line outside a cost block")
	}
}

func (a *assembler) handleCalledPosition(cl classifiedLine, lineNo int, raw string) error {
	val, err := a.comp.resolve(cl.posKey, cl.aliasIdx, cl.value, lineNo, raw)
	if err != nil {
		return err
	}

	switch a.st {
	case stateInEntryCosts:
		// Begin a new Call, seeded from the enclosing entry's position.
		a.callOb, a.callSource, a.callFn = a.curOb, a.curFl, a.curFn
		a.curCall = &Call{}
		a.applyCalledKey(cl.posKey, val)
		a.st = stateInCallPos
		return nil
	case stateInCallPos:
		a.applyCalledKey(cl.posKey, val)
		return nil
	case stateInCallCosts:
		a.finalizeCall()
		a.callOb, a.callSource, a.callFn = a.curOb, a.curFl, a.curFn
		a.curCall = &Call{}
		a.applyCalledKey(cl.posKey, val)
		a.st = stateInCallPos
		return nil
	default:
		return newParseError(KindUnexpectedLine, lineNo, raw, "called-position line outside an entry")
	}
}

func (a *assembler) applyCalledKey(key, val string) {
	switch key {
	case "ob":
		a.callOb = val
	case "fl", "fi":
		a.callSource = val
	case "fn":
		a.callFn = val
	}
}

func (a *assembler) handleCostLine(cl classifiedLine, lineNo int, raw string) error {
	if !a.headersSeen() {
		return newParseError(KindMissingHeader, lineNo, raw, "Missing positions/events header")
	}

	nPos, nEvt := len(a.posAxis), len(a.eventAxis)
	if len(cl.tokens) != nPos+nEvt {
		return newParseError(KindWrongColumnCount, lineNo, raw, "cost line has wrong number of tokens")
	}

	row := &CostRow{SubPositions: make([]uint64, nPos), Costs: make([]uint64, nEvt)}
	for i := 0; i < nPos; i++ {
		v, err := decodeSubPosition(cl.tokens[i], i, a.subPos)
		if err != nil {
			return newParseError(KindMalformedNumber, lineNo, raw, err.Error())
		}
		row.SubPositions[i] = v
	}
	for i := 0; i < nEvt; i++ {
		v, err := parseUint(cl.tokens[nPos+i])
		if err != nil {
			return newParseError(KindMalformedNumber, lineNo, raw, err.Error())
		}
		row.Costs[i] = v
	}

	switch a.st {
	case stateInEntryPos:
		a.curEntry = &Entry{Position: a.intern.intern(a.curOb, a.curFl, a.curFn)}
		a.curEntry.Costs = append(a.curEntry.Costs, row)
		a.st = stateInEntryCosts
		return nil
	case stateInEntryCosts:
		a.curEntry.Costs = append(a.curEntry.Costs, row)
		return nil
	case stateExpectCallCost:
		a.curCall.Costs = append(a.curCall.Costs, row)
		a.st = stateInCallCosts
		return nil
	case stateInCallCosts:
		a.curCall.Costs = append(a.curCall.Costs, row)
		return nil
	default:
		return newParseError(KindUnexpectedLine, lineNo, raw, "cost line with no preceding position")
	}
}

func (a *assembler) handleCallHeader(cl classifiedLine, lineNo int, raw string) error {
	if a.st != stateInCallPos {
		return newParseError(KindUnexpectedLine, lineNo, raw, "call line with no preceding call-position")
	}

	nPos := len(a.posAxis)
	tokens := splitFields(cl.callSpec)
	if len(tokens) != nPos {
		return newParseError(KindWrongColumnCount, lineNo, raw, "call line sub-position count mismatch")
	}

	subPos := make([]uint64, nPos)
	for i := 0; i < nPos; i++ {
		v, err := decodeSubPosition(tokens[i], i, a.subPos)
		if err != nil {
			return newParseError(KindMalformedNumber, lineNo, raw, err.Error())
		}
		subPos[i] = v
	}

	a.curCall.NCalls = cl.ncalls
	a.curCall.SubPositions = subPos
	target := a.intern.intern(a.callOb, a.callSource, a.callFn)
	a.curCall.Target = &Entry{Position: target, placeholder: true}

	a.st = stateExpectCallCost
	return nil
}

func (a *assembler) handleEmpty() error {
	switch a.st {
	case stateIdle:
		return nil
	case stateInEntryPos:
		// A bare position block with no cost rows is dropped silently.
		a.resetEntry()
		a.st = stateIdle
		return nil
	case stateInEntryCosts:
		a.commitEntry()
		a.st = stateIdle
		return nil
	case stateInCallCosts:
		a.finalizeCall()
		a.commitEntry()
		a.st = stateIdle
		return nil
	default:
		// stateInCallPos / stateExpectCallCost: a call group in progress
		// with no cost row yet. Treated like any other incomplete block:
		// drop it and the entry it belongs to is still committed if it
		// already has cost rows of its own; the dangling call is dropped.
		a.curCall = nil
		a.commitEntry()
		a.st = stateIdle
		return nil
	}
}

func (a *assembler) finalizeCall() {
	if a.curCall != nil {
		a.curEntry.Calls = append(a.curEntry.Calls, a.curCall)
		a.curCall = nil
	}
}

func (a *assembler) commitEntry() {
	if a.curEntry != nil && len(a.curEntry.Costs) > 0 {
		a.completed = append(a.completed, a.curEntry)
	}
	a.resetEntry()
}

func (a *assembler) resetEntry() {
	a.curEntry = nil
	a.curCall = nil
	a.curOb, a.curFl, a.curFn = "", "", ""
}

// finish flushes any entry still open at EOF (a file lacking a trailing
// blank line).
func (a *assembler) finish() {
	switch a.st {
	case stateInEntryCosts:
		a.commitEntry()
	case stateInCallCosts:
		a.finalizeCall()
		a.commitEntry()
	case stateInEntryPos, stateInCallPos, stateExpectCallCost:
		a.resetEntry()
	}
	a.st = stateIdle
}
