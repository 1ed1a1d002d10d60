package checker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/archval/pkg/cypher"
	"github.com/dd0wney/archval/pkg/logging"
	"github.com/dd0wney/archval/pkg/model"
	"github.com/dd0wney/archval/pkg/violations"
)

// TriggerCheckerName identifies the trigger-rejection strategy in the
// registry and the API.
const TriggerCheckerName = "database"

// TriggerChecker validates a model by writing it to a store whose installed
// triggers reject invalid graphs. The whole model goes in one transactional
// request: either everything commits, or the store rolls back and the
// rejection text carries the violation.
type TriggerChecker struct {
	store GraphStore
	style cypher.Style
	log   logging.Logger
}

// NewTriggerChecker builds the trigger-rejection checker.
func NewTriggerChecker(gs GraphStore, style cypher.Style, log logging.Logger) *TriggerChecker {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &TriggerChecker{
		store: gs,
		style: style,
		log:   log.With(logging.Component("checker"), logging.Strategy(TriggerCheckerName)),
	}
}

// Name implements Checker.
func (c *TriggerChecker) Name() string { return TriggerCheckerName }

// Validate compiles the model, attempts the write, and interprets any
// rejection. The scratch data is removed before the result is built, even
// when the write failed; a cleanup failure is reported as a warning, never
// as the run's outcome.
func (c *TriggerChecker) Validate(ctx context.Context, m *model.ArchitectureModel) *Result {
	rep := &reporter{}
	start := time.Now()

	if len(m.Nodes) == 0 {
		rep.addError("Model has no nodes to validate")
		return rep.result(nil)
	}
	if len(m.Relationships) == 0 {
		rep.addWarning("Model has no relationships")
	}

	runID := uuid.NewString()
	log := c.log.With(logging.RunID(runID))

	if err := c.store.VerifyConnectivity(ctx); err != nil {
		log.Error("Store unreachable", logging.Error(err))
		rep.addError("Failed to connect to Neo4j database")
		return rep.result(nil)
	}

	statement := cypher.Compile(m, c.style)
	log.Info("Writing model for trigger validation",
		logging.Nodes(len(m.Nodes)), logging.Relationships(len(m.Relationships)))

	writeErr := c.store.ExecuteWrite(ctx, statement)
	if err := c.store.Cleanup(ctx); err != nil {
		log.Warn("Cleanup failed", logging.Error(err))
		rep.addWarning("Database cleanup issue: " + err.Error())
	}

	summary := map[string]any{
		"nodes_tested":         len(m.Nodes),
		"relationships_tested": len(m.Relationships),
		"validation_time":      time.Now().Format(time.RFC3339),
		"run_id":               runID,
	}

	if writeErr == nil {
		summary["status"] = "Model successfully validated against the graph store"
		log.Info("Model accepted", logging.Latency(time.Since(start)))
		return rep.result(summary)
	}

	rep.addError(interpretWriteError(writeErr))
	summary["error_count"] = len(rep.errors)
	log.Info("Model rejected",
		logging.Violations(len(rep.errors)), logging.Latency(time.Since(start)))
	return rep.result(summary)
}

// interpretWriteError classifies a store rejection. Trigger bundles go
// through the violation interpreter; constraint failures and transport
// errors are reported as-is with a category prefix.
func interpretWriteError(err error) string {
	text := err.Error()
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "executing triggers") || strings.Contains(lower, "trigger"):
		return violations.ExtractTriggerMessage(text)
	case strings.Contains(lower, "constraint"):
		return "Constraint validation failed: " + text
	default:
		return "Unexpected error during database validation: " + text
	}
}
