package pipework

// WindchestGroup is a wind supply grouping. Ranks refer to a group but do
// not own it; several ranks usually share one.
type WindchestGroup struct {
	Name string
}
