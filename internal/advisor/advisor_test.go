package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfsight/cgviewer/internal/callgrind"
)

func entry(symbol string, selfCost uint64) *callgrind.Entry {
	return &callgrind.Entry{
		Position: &callgrind.Position{Symbol: symbol},
		Costs:    []*callgrind.CostRow{{Costs: []uint64{selfCost}}},
	}
}

func TestNewAdvisor(t *testing.T) {
	advisor := NewAdvisor()

	assert.NotNil(t, advisor)
	assert.NotEmpty(t, advisor.rules)
}

func TestNewAdvisorWithRules(t *testing.T) {
	rules := []Rule{
		{Type: "test", Name: "test_rule"},
	}

	advisor := NewAdvisorWithRules(rules)

	assert.Len(t, advisor.rules, 1)
	assert.Equal(t, "test_rule", advisor.rules[0].Name)
}

func TestAdvisor_Advise_SelfCostHotspot(t *testing.T) {
	advisor := NewAdvisor()

	ctx := &RuleContext{
		Entries: []*callgrind.Entry{
			entry("heavyCompute", 2000),
			entry("lightTask", 100),
		},
		EventAxis: []string{"Ir"},
	}

	suggestions := advisor.Advise(ctx)

	var foundHighCPU bool
	for _, s := range suggestions {
		if s.Type == "cpu_hotspot" {
			foundHighCPU = true
			assert.Contains(t, s.Message, "heavyCompute")
		}
	}
	assert.True(t, foundHighCPU, "Should find self-cost hotspot suggestion")
}

func TestAdvisor_Advise_DirectRecursion(t *testing.T) {
	advisor := NewAdvisor()

	f := entry("factorial", 10)
	f.Calls = []*callgrind.Call{{NCalls: 5, Target: f}}

	ctx := &RuleContext{Entries: []*callgrind.Entry{f}}

	suggestions := advisor.Advise(ctx)

	var foundRecursion bool
	for _, s := range suggestions {
		if s.Type == "recursion" {
			foundRecursion = true
			assert.Equal(t, "factorial", s.FuncName)
		}
	}
	assert.True(t, foundRecursion, "Should find direct recursion suggestion")
}

func TestAdvisor_Advise_HighCallCount(t *testing.T) {
	advisor := NewAdvisor()

	caller := entry("dispatch", 10)
	callee := entry("validate", 10)
	caller.Calls = []*callgrind.Call{{NCalls: 500000, Target: callee}}

	ctx := &RuleContext{Entries: []*callgrind.Entry{caller, callee}}

	suggestions := advisor.Advise(ctx)

	var foundHighCallCount bool
	for _, s := range suggestions {
		if s.Type == "high_call_count" {
			foundHighCallCount = true
		}
	}
	assert.True(t, foundHighCallCount, "Should find high call count suggestion")
}

func TestAdvisor_Advise_WideFanin(t *testing.T) {
	advisor := NewAdvisor()

	shared := entry("sharedHelper", 10)
	for i := 0; i < 25; i++ {
		shared.Callers = append(shared.Callers, entry("caller", 1))
	}

	ctx := &RuleContext{Entries: []*callgrind.Entry{shared}}

	suggestions := advisor.Advise(ctx)

	var foundWideFanin bool
	for _, s := range suggestions {
		if s.Type == "wide_fanin" {
			foundWideFanin = true
			assert.Equal(t, "sharedHelper", s.FuncName)
		}
	}
	assert.True(t, foundWideFanin, "Should find wide fan-in suggestion")
}

func TestAdvisor_Advise_NoSuggestions(t *testing.T) {
	advisor := NewAdvisor()

	// Ten equal entries: each holds 10% of the self cost, under the 15% hotspot threshold.
	var entries []*callgrind.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, entry("normalFunction", 100))
	}
	ctx := &RuleContext{Entries: entries}

	suggestions := advisor.Advise(ctx)

	assert.Empty(t, suggestions)
}

func TestAdvisor_Advise_NoEntries(t *testing.T) {
	advisor := NewAdvisor()

	ctx := &RuleContext{Entries: nil}

	suggestions := advisor.Advise(ctx)

	assert.Empty(t, suggestions)
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{10.0, "10"},
		{10.5, "10.5"},
		{10.55, "10.55"},
		{0.0, "0"},
		{0.5, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatPercent(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckSelfCostHotspot(t *testing.T) {
	ctx := &RuleContext{
		Entries: []*callgrind.Entry{
			entry("hotFunction", 20),
			entry("coldFunction", 2),
		},
	}

	suggestions := checkSelfCostHotspot(ctx)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "hotFunction", suggestions[0].FuncName)
}

func TestCheckDirectRecursion_NoSelfCalls(t *testing.T) {
	a := entry("a", 10)
	b := entry("b", 10)
	a.Calls = []*callgrind.Call{{NCalls: 1, Target: b}}

	suggestions := checkDirectRecursion(&RuleContext{Entries: []*callgrind.Entry{a, b}})

	assert.Empty(t, suggestions)
}

func TestCheckHighCallCount_BelowThreshold(t *testing.T) {
	caller := entry("caller", 10)
	callee := entry("callee", 10)
	caller.Calls = []*callgrind.Call{{NCalls: 10, Target: callee}}

	suggestions := checkHighCallCount(&RuleContext{Entries: []*callgrind.Entry{caller, callee}})

	assert.Empty(t, suggestions)
}
