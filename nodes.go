package prdflow

// Workflow node ids. The topology is fixed at compile time; routing
// between these nodes is the only runtime-variable part of the graph.
const (
	NodeNormalize         = "normalize"
	NodePlanner           = "planner"
	NodeQuestioner        = "questioner"
	NodeHumanInput        = "human_input"
	NodeClassifier        = "classifier"
	NodeUpdater           = "updater"
	NodeMetaResponder     = "meta_responder"
	NodeOffTopicResponder = "off_topic_responder"
	NodeAssembler         = "assembler"
	NodeRefiner           = "refiner"
	NodeExporter          = "exporter"
)
