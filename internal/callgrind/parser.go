package callgrind

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ParserOptions holds configuration options for a Parser.
type ParserOptions struct {
	// Verbose toggles diagnostic tracing of unknown/informational lines to
	// stderr, and makes Summary additionally write a top-N ranking table to
	// stderr. It is a per-instance configuration flag, not global mutable
	// state.
	Verbose bool

	// SummaryTopN bounds the verbose stderr ranking table Summary writes.
	SummaryTopN int
}

// DefaultParserOptions returns default parser options.
func DefaultParserOptions() *ParserOptions {
	return &ParserOptions{Verbose: false, SummaryTopN: 10}
}

// Parser owns one parse of a Callgrind profile: the line classifier, the
// sub-position decoder, the compression tables, the position interner, the
// entry assembler, the stitcher, and the ranker.
//
// A Parser is single-threaded and synchronous: Parse performs the only
// blocking I/O (a sequential read of the input), and after it returns,
// Entries yields a read-only view safe for concurrent readers.
type Parser struct {
	path string
	opts *ParserOptions

	entries   []*Entry
	eventAxis []string
	nUnique   int
	parsed    bool
}

// NewParser constructs a Parser bound to path. No I/O is performed until
// Parse is called.
func NewParser(path string, opts *ParserOptions) *Parser {
	if opts == nil {
		opts = DefaultParserOptions()
	}
	return &Parser{path: path, opts: opts}
}

// SetVerbose toggles diagnostic tracing on stderr.
func (p *Parser) SetVerbose(v bool) {
	p.opts.Verbose = v
}

// Parse opens the file, drives the state machine line by line, stitches
// the call graph, and ranks the resulting entries. It returns the first
// fatal *ParseError encountered; on error no partially committed entry
// from the offending line is retained. Parse is intended to be called
// once per Parser instance.
func (p *Parser) Parse() error {
	f, err := os.Open(p.path)
	if err != nil {
		return newIoError(err)
	}
	defer f.Close()

	return p.parseReader(f)
}

// ParseReader runs the same state machine as Parse but reads from an
// already-open io.Reader instead of opening p.path. It exists so
// collaborators that hold the dump as a stream (such as tests) can drive a
// parse without a filesystem path.
func (p *Parser) ParseReader(r io.Reader) error {
	return p.parseReader(r)
}

func (p *Parser) parseReader(r io.Reader) error {
	asm := newAssembler()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		cl := classify(raw)

		if cl.kind == kindUnknown && p.opts.Verbose {
			fmt.Fprintf(os.Stderr, "%d: %s\n", lineNo, raw)
		}

		if err := asm.process(cl, lineNo, raw); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return newIoError(err)
	}

	asm.finish()

	nEvents := len(asm.eventAxis)
	stitch(asm.completed)
	rank(asm.completed, nEvents)

	p.entries = asm.completed
	p.eventAxis = asm.eventAxis
	p.nUnique = asm.intern.count()
	p.parsed = true
	return nil
}

// Entries returns the parsed entries, ordered by total cost descending.
// Valid only after a successful Parse.
func (p *Parser) Entries() []*Entry {
	return p.entries
}

// EventAxis returns the ordered event names declared by the file's
// events: header.
func (p *Parser) EventAxis() []string {
	return p.eventAxis
}

// TotalCost returns e's total cost vector across the parser's declared
// event axis.
func (p *Parser) TotalCost(e *Entry) []uint64 {
	return e.TotalCost(len(p.eventAxis))
}

// Summary reports the headline counts of the most recent parse. When the
// Parser was constructed (or later toggled via SetVerbose) with
// Verbose set, Summary additionally writes a top-N ranking table to
// stderr in the "pct% cost  object::symbol" format before returning,
// independent of the returned Summary value.
func (p *Parser) Summary() Summary {
	if p.opts.Verbose {
		p.writeVerboseSummary()
	}
	return Summary{NEntries: len(p.entries), NUniquePositions: p.nUnique}
}

func (p *Parser) writeVerboseSummary() {
	nEvents := len(p.eventAxis)
	if len(p.entries) == 0 || nEvents == 0 {
		return
	}

	n := p.opts.SummaryTopN
	if n <= 0 || n > len(p.entries) {
		n = len(p.entries)
	}

	maxCost := p.entries[0].TotalCost(nEvents)[0]
	fmt.Fprintf(os.Stderr, "=== Top %d Functions (%s) ===\n", n, p.eventAxis[0])
	for i := 0; i < n; i++ {
		e := p.entries[i]
		cost := e.TotalCost(nEvents)[0]
		pct := 0.0
		if maxCost > 0 {
			pct = float64(cost) * 100 / float64(maxCost)
		}
		fmt.Fprintf(os.Stderr, "%3d. %6.2f%% %12d  %s::%s\n", i+1, pct, cost, e.Position.Object, e.Position.Symbol)
	}
}
