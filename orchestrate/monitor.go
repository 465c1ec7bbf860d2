package orchestrate

import "github.com/poiesic/retrievit/core"

// Monitor provides hooks to observe one retrieval request as it moves through
// the pipeline. Implement this interface to trace classification, planning,
// tool execution, fusion and escalation.
type Monitor interface {
	Start(query string)
	AfterClassification(persona core.Persona, meta *core.QueryMetadata)
	AfterRewrite(variants []string)
	AfterPlan(persona core.Persona, plan core.ExecutionPlan)
	AfterToolResult(result core.ToolResult)
	AfterFusion(candidates []*core.Candidate, degraded bool)
	Escalating(reason string)
	Finish(evidence *core.Evidence, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                          {}
func (n *noopMonitor) AfterClassification(_ core.Persona, _ *core.QueryMetadata) {}
func (n *noopMonitor) AfterRewrite(_ []string)                                 {}
func (n *noopMonitor) AfterPlan(_ core.Persona, _ core.ExecutionPlan)          {}
func (n *noopMonitor) AfterToolResult(_ core.ToolResult)                       {}
func (n *noopMonitor) AfterFusion(_ []*core.Candidate, _ bool)                 {}
func (n *noopMonitor) Escalating(_ string)                                     {}
func (n *noopMonitor) Finish(_ *core.Evidence, _ error)                        {}
