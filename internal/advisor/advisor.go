// Package advisor provides analysis suggestions based on a parsed call graph.
package advisor

import (
	"strconv"
	"strings"

	"github.com/perfsight/cgviewer/internal/callgrind"
)

// Advisor generates analysis suggestions based on profiling data.
type Advisor struct {
	rules []Rule
}

// Suggestion is one advisor finding attached to a function in the call graph.
type Suggestion struct {
	Type     string
	Severity string
	Message  string
	FuncName string
}

// Rule represents a suggestion rule.
type Rule struct {
	Type        string
	Name        string
	Description string
	Threshold   float64
	Check       RuleCheckFunc
}

// RuleCheckFunc is a function that checks if a rule applies.
type RuleCheckFunc func(ctx *RuleContext) []Suggestion

// RuleContext provides context for rule checking: the call graph produced by
// a parse, the event axis it was parsed against, and which event index
// ("Ir", "Dr", ...) the percentages below are computed over.
type RuleContext struct {
	Entries    []*callgrind.Entry
	EventAxis  []string
	EventIndex int
}

// totalEventCost sums TotalCost(EventIndex+1) across every top-level entry,
// giving the denominator for "percent of total" rules.
func (c *RuleContext) totalEventCost() uint64 {
	var total uint64
	for _, e := range c.Entries {
		costs := e.TotalCost(c.EventIndex + 1)
		if len(costs) > c.EventIndex {
			total += costs[c.EventIndex]
		}
	}
	return total
}

func (c *RuleContext) selfCost(e *callgrind.Entry) uint64 {
	var total uint64
	for _, row := range e.Costs {
		if len(row.Costs) > c.EventIndex {
			total += row.Costs[c.EventIndex]
		}
	}
	return total
}

func (c *RuleContext) callCost(call *callgrind.Call) uint64 {
	var total uint64
	for _, row := range call.Costs {
		if len(row.Costs) > c.EventIndex {
			total += row.Costs[c.EventIndex]
		}
	}
	return total
}

// NewAdvisor creates a new Advisor with default rules.
func NewAdvisor() *Advisor {
	return &Advisor{
		rules: defaultRules(),
	}
}

// NewAdvisorWithRules creates a new Advisor with custom rules.
func NewAdvisorWithRules(rules []Rule) *Advisor {
	return &Advisor{
		rules: rules,
	}
}

// Advise generates suggestions based on the analysis context.
func (a *Advisor) Advise(ctx *RuleContext) []Suggestion {
	suggestions := make([]Suggestion, 0)

	for _, rule := range a.rules {
		if rule.Check != nil {
			ruleSuggestions := rule.Check(ctx)
			suggestions = append(suggestions, ruleSuggestions...)
		}
	}

	return suggestions
}

// defaultRules returns the default set of analysis rules.
func defaultRules() []Rule {
	return []Rule{
		{
			Type:        "cpu",
			Name:        "self_cost_hotspot",
			Description: "Check for functions whose own cost dominates the event total",
			Threshold:   15.0,
			Check:       checkSelfCostHotspot,
		},
		{
			Type:        "cpu",
			Name:        "hot_call_edge",
			Description: "Check for call edges that account for most of a caller's cost",
			Threshold:   80.0,
			Check:       checkHotCallEdge,
		},
		{
			Type:        "structure",
			Name:        "direct_recursion",
			Description: "Check for functions that call themselves directly",
			Threshold:   1.0,
			Check:       checkDirectRecursion,
		},
		{
			Type:        "structure",
			Name:        "high_call_count",
			Description: "Check for call edges invoked an extreme number of times",
			Threshold:   100000,
			Check:       checkHighCallCount,
		},
		{
			Type:        "structure",
			Name:        "wide_fanin",
			Description: "Check for functions called from many distinct call sites",
			Threshold:   20,
			Check:       checkWideFanin,
		},
	}
}

// checkSelfCostHotspot flags entries whose own cost rows account for a large
// share of the run's total cost on the configured event.
func checkSelfCostHotspot(ctx *RuleContext) []Suggestion {
	suggestions := make([]Suggestion, 0)

	total := ctx.totalEventCost()
	if total == 0 {
		return suggestions
	}

	for _, e := range ctx.Entries {
		pct := float64(ctx.selfCost(e)) / float64(total) * 100
		if pct > 15.0 {
			suggestions = append(suggestions, Suggestion{
				Type:     "cpu_hotspot",
				Severity: "warning",
				Message:  "function " + e.Position.Symbol + " accounts for " + formatPercent(pct) + "% of total cost; consider optimizing",
				FuncName: e.Position.Symbol,
			})
		}
	}

	return suggestions
}

// checkHotCallEdge flags a call edge that consumes most of its caller's
// total cost, pointing at a single dependency worth optimizing directly.
func checkHotCallEdge(ctx *RuleContext) []Suggestion {
	suggestions := make([]Suggestion, 0)

	for _, e := range ctx.Entries {
		callerTotal := ctx.totalCost(e)
		if callerTotal == 0 {
			continue
		}
		for _, call := range e.Calls {
			pct := float64(ctx.callCost(call)) / float64(callerTotal) * 100
			if pct > 80.0 && call.Target != nil {
				suggestions = append(suggestions, Suggestion{
					Type:     "hot_call_edge",
					Severity: "warning",
					Message:  e.Position.Symbol + " spends " + formatPercent(pct) + "% of its cost calling " + call.Target.Position.Symbol,
					FuncName: e.Position.Symbol,
				})
			}
		}
	}

	return suggestions
}

// totalCost returns the entry's TotalCost at the configured event index.
func (c *RuleContext) totalCost(e *callgrind.Entry) uint64 {
	costs := e.TotalCost(c.EventIndex + 1)
	if len(costs) > c.EventIndex {
		return costs[c.EventIndex]
	}
	return 0
}

// checkDirectRecursion flags entries that call themselves, a structural
// signal worth distinguishing from ordinary call-graph fan-out.
func checkDirectRecursion(ctx *RuleContext) []Suggestion {
	suggestions := make([]Suggestion, 0)

	for _, e := range ctx.Entries {
		for _, call := range e.Calls {
			if call.Target == e {
				suggestions = append(suggestions, Suggestion{
					Type:     "recursion",
					Severity: "info",
					Message:  "function " + e.Position.Symbol + " calls itself directly",
					FuncName: e.Position.Symbol,
				})
				break
			}
		}
	}

	return suggestions
}

// checkHighCallCount flags call edges invoked an extreme number of times,
// a candidate for call-overhead reduction even when per-call cost is low.
func checkHighCallCount(ctx *RuleContext) []Suggestion {
	suggestions := make([]Suggestion, 0)

	for _, e := range ctx.Entries {
		for _, call := range e.Calls {
			if call.NCalls > 100000 && call.Target != nil {
				suggestions = append(suggestions, Suggestion{
					Type:     "high_call_count",
					Severity: "info",
					Message:  e.Position.Symbol + " calls " + call.Target.Position.Symbol + " " + strconv.FormatUint(call.NCalls, 10) + " times",
					FuncName: e.Position.Symbol,
				})
			}
		}
	}

	return suggestions
}

// checkWideFanin flags functions called from many distinct sites, which
// are strong candidates for inlining or result caching.
func checkWideFanin(ctx *RuleContext) []Suggestion {
	suggestions := make([]Suggestion, 0)

	for _, e := range ctx.Entries {
		if len(e.Callers) > 20 {
			suggestions = append(suggestions, Suggestion{
				Type:     "wide_fanin",
				Severity: "info",
				Message:  "function " + e.Position.Symbol + " is called from " + strconv.Itoa(len(e.Callers)) + " distinct sites",
				FuncName: e.Position.Symbol,
			})
		}
	}

	return suggestions
}

// formatPercent formats a percentage value.
func formatPercent(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
