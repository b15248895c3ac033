// Package testutil holds the Callgrind dump fixtures shared by parser tests
// across the module.
package testutil

// Callgrind dump fixtures covering the canonical end-to-end parsing
// scenarios: a single cost row, differential sub-position decoding,
// compression-alias reuse of a named entry, call-group inheritance of
// object/file from the enclosing entry, caller/callee reciprocity across
// two top-level entries, and the empty-file edge case.
const (
	CallgrindMinimalEntry = `positions: line
events: Ir
fl=main.c
fn=main
42 100
`

	CallgrindDifferentialSubPositions = `positions: line
events: Ir
fl=a.c
fn=f
10 5
+2 3
* 7
-1 2
`

	CallgrindCompressionAliasing = `positions: line
events: Ir
fn=(1) foo
fl=(1) a.c
1 10
fn=(1)
fl=(1)
2 20
`

	CallgrindCallGroupWithInheritance = `positions: line
events: Ir
ob=prog
fl=a.c
fn=caller
1 100
cfn=callee
calls=3 5
5 30
`

	CallgrindCallerReciprocity = `positions: line
events: Ir
fl=a.c
fn=A
1 10
cfn=B
calls=1 1
1 5

fl=a.c
fn=B
1 20
`

	CallgrindEmptyFile = ``
)
