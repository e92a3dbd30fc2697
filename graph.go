package prdflow

import (
	"github.com/randalmurphal/prdflow/flow"
)

// BuildGraph compiles the document workflow. The topology is static:
//
//	normalize ──> planner ──> questioner ──> human_input (interrupt)
//	                              │               │
//	                          assembler <── updater <── classifier
//	                                            │
//	                      meta/off-topic responders, refiner, exporter
//
// human_input is the interrupt node: every path that needs a user reply
// converges on it, and arriving there suspends the run.
func BuildGraph() (*flow.CompiledGraph[ConversationState], error) {
	return flow.NewGraph[ConversationState]().
		AddNode(NodeNormalize, nodeNormalize).
		AddNode(NodePlanner, nodePlanner).
		AddNode(NodeQuestioner, nodeQuestioner).
		AddNode(NodeHumanInput, nodeHumanInput).
		AddNode(NodeClassifier, nodeClassifier).
		AddNode(NodeUpdater, nodeUpdater).
		AddNode(NodeMetaResponder, nodeMetaResponder).
		AddNode(NodeOffTopicResponder, nodeOffTopicResponder).
		AddNode(NodeAssembler, nodeAssembler).
		AddNode(NodeRefiner, nodeRefiner).
		AddNode(NodeExporter, nodeExporter).
		AddConditionalEdge(NodeNormalize, routeAfterNormalize).
		AddEdge(NodePlanner, NodeQuestioner).
		AddConditionalEdge(NodeQuestioner, routeAfterQuestioner).
		AddConditionalEdge(NodeHumanInput, routeAfterHumanInput).
		AddConditionalEdge(NodeClassifier, routeAfterClassification).
		AddConditionalEdge(NodeUpdater, routeAfterUpdate).
		AddEdge(NodeMetaResponder, NodeHumanInput).
		AddEdge(NodeOffTopicResponder, NodeHumanInput).
		AddConditionalEdge(NodeAssembler, routeAfterAssembler).
		AddEdge(NodeRefiner, NodeHumanInput).
		AddEdge(NodeExporter, flow.END).
		SetEntry(NodeNormalize).
		SetInterrupt(NodeHumanInput).
		Compile()
}
