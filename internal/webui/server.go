// Package webui serves a JSON HTTP API over an already-parsed Callgrind
// call graph for interactive caller/callee traversal.
package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/perfsight/cgviewer/internal/callgrind"
	"github.com/perfsight/cgviewer/pkg/collections"
	"github.com/perfsight/cgviewer/pkg/utils"
)

var tracer = otel.Tracer("cgviewer/webui")

// Server exposes a parsed call graph over HTTP.
type Server struct {
	parser *callgrind.Parser
	port   int
	logger utils.Logger
	server *http.Server

	indexOnce sync.Once
	indexOf   map[*callgrind.Entry]int

	// subtreeVisited backs the BFS walk in handleSubtree. It is reused
	// across requests and reset with Reset() rather than reallocated, since
	// call graphs from large dumps can hold hundreds of thousands of
	// entries.
	subtreeMu      sync.Mutex
	subtreeVisited *collections.VersionedBitset

	// viewed tracks which function ids have been requested individually via
	// /api/function/{id}, so /api/summary can report how much of the graph
	// a session has actually inspected.
	viewed      *collections.AtomicBitset
	viewedCount int64
}

// NewServer creates a new web UI server over a parser that has already
// completed Parse.
func NewServer(parser *callgrind.Parser, port int, logger utils.Logger) *Server {
	n := len(parser.Entries())
	return &Server{
		parser:         parser,
		port:           port,
		logger:         logger,
		subtreeVisited: collections.NewVersionedBitset(n),
		viewed:         collections.NewAtomicBitset(n),
	}
}

// Start starts the web server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/functions", s.handleFunctions)
	mux.HandleFunc("/api/function/", s.handleFunction)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/", s.handleIndex)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("Starting web server at http://localhost:%d", s.port)
	s.logger.Info("Press Ctrl+C to stop")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleIndex serves a minimal landing page pointing at the JSON API.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html>
<html><head><title>cgviewer</title></head>
<body>
<h1>cgviewer</h1>
<p>JSON API: <a href="/api/summary">/api/summary</a>,
<code>/api/functions</code>, <code>/api/function/{id}</code>,
<code>/api/function/{id}/subtree?dir=callers|callees&amp;order=dfs|bfs</code>,
<code>/api/search?q=...</code></p>
</body></html>`)
}

// summaryView is the JSON shape returned by /api/summary.
type summaryView struct {
	NEntries         int      `json:"n_entries"`
	NUniquePositions int      `json:"n_unique_positions"`
	EventAxis        []string `json:"event_axis"`
	NFunctionsViewed int64    `json:"n_functions_viewed"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "webui.summary")
	defer span.End()

	summary := s.parser.Summary()
	writeJSON(w, summaryView{
		NEntries:         summary.NEntries,
		NUniquePositions: summary.NUniquePositions,
		EventAxis:        s.parser.EventAxis(),
		NFunctionsViewed: atomic.LoadInt64(&s.viewedCount),
	})
}

// functionView is a flattened, cycle-free view of one Entry, suitable for
// JSON encoding and for the per-function detail endpoint.
type functionView struct {
	ID        int      `json:"id"`
	Object    string   `json:"object"`
	Source    string   `json:"source"`
	Symbol    string   `json:"symbol"`
	SelfCost  []uint64 `json:"self_cost"`
	TotalCost []uint64 `json:"total_cost"`
	NCalls    int      `json:"n_calls"`
	NCallers  int      `json:"n_callers"`
	PctOfTop  float64  `json:"pct_of_top"`
}

func (s *Server) functionViews() []functionView {
	entries := s.parser.Entries()
	nEvents := len(s.parser.EventAxis())

	var maxCost uint64
	if len(entries) > 0 {
		top := entries[0].TotalCost(nEvents)
		if len(top) > 0 {
			maxCost = top[0]
		}
	}

	views := make([]functionView, 0, len(entries))
	for i, e := range entries {
		total := e.TotalCost(nEvents)
		self := make([]uint64, nEvents)
		for _, row := range e.Costs {
			for j := 0; j < nEvents && j < len(row.Costs); j++ {
				self[j] += row.Costs[j]
			}
		}

		var pct float64
		if maxCost > 0 && len(total) > 0 {
			pct = float64(total[0]) * 100 / float64(maxCost)
		}

		views = append(views, functionView{
			ID:        i,
			Object:    e.Position.Object,
			Source:    e.Position.Source,
			Symbol:    e.Position.Symbol,
			SelfCost:  self,
			TotalCost: total,
			NCalls:    len(e.Calls),
			NCallers:  len(e.Callers),
			PctOfTop:  pct,
		})
	}
	return views
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "webui.functions")
	defer span.End()

	views := s.functionViews()

	limit := len(views)
	if q := r.URL.Query().Get("top"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	writeJSON(w, views[:limit])
}

// functionDetailView adds resolved caller/callee names to a functionView.
type functionDetailView struct {
	functionView
	Callers []string `json:"callers"`
	Calls   []string `json:"calls"`
}

func (s *Server) handleFunction(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "webui.function")
	defer span.End()

	rest := strings.TrimPrefix(r.URL.Path, "/api/function/")
	if idStr, ok := strings.CutSuffix(rest, "/subtree"); ok {
		s.handleSubtree(w, r, idStr)
		return
	}

	id, err := strconv.Atoi(rest)
	if err != nil {
		http.Error(w, "invalid function id", http.StatusBadRequest)
		return
	}

	entries := s.parser.Entries()
	if id < 0 || id >= len(entries) {
		http.Error(w, "function not found", http.StatusNotFound)
		return
	}

	if !s.viewed.TestAndSet(id) {
		atomic.AddInt64(&s.viewedCount, 1)
	}

	views := s.functionViews()
	detail := functionDetailView{functionView: views[id]}

	e := entries[id]
	for _, c := range e.Calls {
		if c.Target != nil {
			detail.Calls = append(detail.Calls, c.Target.Position.Symbol)
		}
	}
	for _, caller := range e.Callers {
		detail.Callers = append(detail.Callers, caller.Position.Symbol)
	}

	writeJSON(w, detail)
}

// entryIndex returns a lazily-built lookup from *callgrind.Entry to its
// position in the parser's entry slice, the index space handleFunction and
// handleSubtree's ids are drawn from.
func (s *Server) entryIndex() map[*callgrind.Entry]int {
	s.indexOnce.Do(func() {
		entries := s.parser.Entries()
		s.indexOf = make(map[*callgrind.Entry]int, len(entries))
		for i, e := range entries {
			s.indexOf[e] = i
		}
	})
	return s.indexOf
}

// subtreeView is one node in a caller/callee subtree walk.
type subtreeView struct {
	ID     int    `json:"id"`
	Object string `json:"object"`
	Symbol string `json:"symbol"`
	Depth  int    `json:"depth"`
}

// subtreeFrame is one pending node in a caller/callee subtree walk, carried
// on either the DFS stack or the BFS queue below.
type subtreeFrame struct {
	id    int
	depth int
}

// neighbors returns the callee or caller entry ids of e that have not yet
// been visited, in the given traversal direction.
func (s *Server) neighbors(e *callgrind.Entry, dir string, visited func(int) bool) []int {
	index := s.entryIndex()
	var ids []int
	if dir == "callees" {
		for _, c := range e.Calls {
			if c.Target == nil {
				continue
			}
			if childID, ok := index[c.Target]; ok && !visited(childID) {
				ids = append(ids, childID)
			}
		}
	} else {
		for _, caller := range e.Callers {
			if childID, ok := index[caller]; ok && !visited(childID) {
				ids = append(ids, childID)
			}
		}
	}
	return ids
}

// walkSubtreeDFS walks the subtree depth-first using a collections.Stack for
// the frontier and a fresh collections.Bitset per request to mark entries
// already emitted, so a call cycle in the graph terminates the walk instead
// of looping forever.
func (s *Server) walkSubtreeDFS(entries []*callgrind.Entry, root subtreeFrame, dir string, maxDepth int) []subtreeView {
	visited := collections.NewBitset(len(entries))
	stack := collections.NewStack[subtreeFrame](16)
	stack.Push(root)

	var nodes []subtreeView
	for !stack.IsEmpty() {
		f, _ := stack.Pop()
		if visited.Test(f.id) {
			continue
		}
		visited.Set(f.id)

		e := entries[f.id]
		nodes = append(nodes, subtreeView{ID: f.id, Object: e.Position.Object, Symbol: e.Position.Symbol, Depth: f.depth})

		if maxDepth > 0 && f.depth >= maxDepth {
			continue
		}
		for _, childID := range s.neighbors(e, dir, visited.Test) {
			stack.Push(subtreeFrame{id: childID, depth: f.depth + 1})
		}
	}
	return nodes
}

// walkSubtreeBFS walks the subtree level by level using a collections.Queue
// for the frontier. It reuses the server's collections.VersionedBitset
// rather than allocating a new visited set per request, resetting it in
// O(1) via Reset() instead of re-zeroing len(entries) bits on every call.
func (s *Server) walkSubtreeBFS(entries []*callgrind.Entry, root subtreeFrame, dir string, maxDepth int) []subtreeView {
	s.subtreeMu.Lock()
	defer s.subtreeMu.Unlock()

	s.subtreeVisited.Reset()
	visited := s.subtreeVisited
	queue := collections.NewQueue[subtreeFrame](16)
	queue.Enqueue(root)
	visited.Set(root.id)

	var nodes []subtreeView
	for !queue.IsEmpty() {
		f, _ := queue.Dequeue()

		e := entries[f.id]
		nodes = append(nodes, subtreeView{ID: f.id, Object: e.Position.Object, Symbol: e.Position.Symbol, Depth: f.depth})

		if maxDepth > 0 && f.depth >= maxDepth {
			continue
		}
		for _, childID := range s.neighbors(e, dir, visited.Test) {
			visited.Set(childID)
			queue.Enqueue(subtreeFrame{id: childID, depth: f.depth + 1})
		}
	}
	return nodes
}

// handleSubtree walks the caller or callee subtree rooted at function id,
// iteratively and cycle-safely. order=dfs (the default) visits depth-first;
// order=bfs visits level by level, which surfaces the immediate callers or
// callees before descending further and is the cheaper choice when a caller
// only wants the first few levels of a hot function's neighborhood.
func (s *Server) handleSubtree(w http.ResponseWriter, r *http.Request, idStr string) {
	_, span := tracer.Start(r.Context(), "webui.function.subtree")
	defer span.End()

	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid function id", http.StatusBadRequest)
		return
	}

	entries := s.parser.Entries()
	if id < 0 || id >= len(entries) {
		http.Error(w, "function not found", http.StatusNotFound)
		return
	}

	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = "callees"
	}
	if dir != "callees" && dir != "callers" {
		http.Error(w, "dir must be \"callers\" or \"callees\"", http.StatusBadRequest)
		return
	}

	order := r.URL.Query().Get("order")
	if order == "" {
		order = "dfs"
	}
	if order != "dfs" && order != "bfs" {
		http.Error(w, "order must be \"dfs\" or \"bfs\"", http.StatusBadRequest)
		return
	}

	maxDepth := 0
	if q := r.URL.Query().Get("depth"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			maxDepth = n
		}
	}

	root := subtreeFrame{id: id, depth: 0}
	var nodes []subtreeView
	if order == "bfs" {
		nodes = s.walkSubtreeBFS(entries, root, dir, maxDepth)
	} else {
		nodes = s.walkSubtreeDFS(entries, root, dir, maxDepth)
	}

	writeJSON(w, nodes)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "webui.search")
	defer span.End()

	q := strings.ToLower(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, []functionView{})
		return
	}

	var matches []functionView
	for _, v := range s.functionViews() {
		if strings.Contains(strings.ToLower(v.Symbol), q) {
			matches = append(matches, v)
		}
	}

	writeJSON(w, matches)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
