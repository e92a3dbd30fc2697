package prdflow

import (
	"time"

	"github.com/randalmurphal/prdflow/flow"
)

// FormatMarkdown is the only export format currently produced.
const FormatMarkdown = "markdown"

// nodeExporter freezes the current snapshot as an immutable version.
// Earlier versions are never rewritten; each export appends.
func nodeExporter(ctx flow.Context, s ConversationState) (ConversationState, error) {
	if err := s.Validate(RequireSnapshot); err != nil {
		return s, err
	}

	version := Version{
		ID:        generateVersionID(),
		CreatedAt: time.Now().UTC(),
		Author:    s.Config.UserID,
		Format:    FormatMarkdown,
		Content:   s.Snapshot,
	}
	s.Versions = append(s.Versions, version)
	s.Stage = StageExport
	s.ClearInput()
	s.AppendAssistant("Exported document version " + version.ID + ".")
	return s, nil
}
