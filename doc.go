/*
Package decide builds ordered conditional decision chains through a fluent
interface and resolves them with first-match-wins semantics.

A chain is a sequence of branches. When appends a boolean branch and Then
gives it a payload; Match opens a match context whose subject is compared
against each following Case, and Render gives the resulting branch its
payload. Otherwise scans the branches in declaration order and returns the
payload of the first branch that is both satisfied and completed:

	role := "editor"

	view, ok := decide.New[string]().
		When(role == "admin").Then("admin-panel").
		Match(role).
		Case("editor").Render("editor-panel").
		Case("viewer").Render("viewer-panel").
		Fallback("guest-panel").
		Otherwise()
	// view == "editor-panel", ok == true

Branch outcomes are fixed at the moment each branch is declared: When
coerces its condition immediately and Case runs its comparator immediately.
Later changes to the values that produced a condition never affect an
existing branch.

Resolution is layered. A matching branch wins first; otherwise the payload
set by Fallback, wherever it appears in the call sequence; otherwise the
optional default passed to Otherwise; otherwise the zero value with ok
false. Only a branch counts as a match, so MatchedIndex and HasMatched stay
at their no-match values when the fallback or default is used.

Misusing the builder never panics and never breaks the fluent flow. Calling
Then with no branch to complete, Case with no open match context, Fallback
twice, or Otherwise over branches that were never completed is reported
through the chain's Diagnostics sink and the call is otherwise a no-op. A
panicking comparator marks its case not satisfied and the chain keeps
working. The default sink logs to stderr; WithDiagnostics swaps in another
sink, such as a Recorder for capturing entries in tests:

	rec := decide.NewRecorder()
	c := decide.New[int]().WithDiagnostics(rec)
	c.Then(1) // no branch yet
	for _, d := range rec.Warnings() {
		fmt.Println(d.Message)
	}

Resolving does not consume the chain: Otherwise can be called repeatedly,
and branches appended afterwards take part in the next resolution. Reset
returns the chain to its empty state while keeping its identity and
configuration.

A Chain is a single-owner value. One goroutine builds, resolves, and
inspects it; nothing in the package locks. Use one chain per goroutine, or
serialize access externally in the rare case a chain must be shared.
*/
package decide
