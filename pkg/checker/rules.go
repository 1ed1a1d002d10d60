package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/archval/pkg/cypher"
	"github.com/dd0wney/archval/pkg/logging"
	"github.com/dd0wney/archval/pkg/model"
	"github.com/dd0wney/archval/pkg/violations"
)

// RuleScanCheckerName identifies the rule-query strategy in the registry
// and the API.
const RuleScanCheckerName = "rules"

// Rule is one violation query. Name is the source filename, which doubles
// as the attribution tag on every violation the query reports.
type Rule struct {
	Name string
	Text string
}

// loadRules reads every *.cypher file under dir in lexical filename order.
// File numbering (01_, 02_, ...) therefore controls execution order.
// Unreadable files are skipped with a warning so one bad rule does not block
// the rest of the scan.
func loadRules(dir string) (rules []Rule, warnings []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []string{fmt.Sprintf("Queries directory not found: %s", dir)}
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cypher") {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not read query file %s: %v", entry.Name(), err))
			continue
		}
		rules = append(rules, Rule{Name: entry.Name(), Text: string(text)})
	}
	return rules, warnings
}

// RuleScanChecker validates a model by writing it to a plain store (no
// triggers installed) and then running an ordered set of violation queries
// against the resulting graph. Every row a query returns is one violation.
type RuleScanChecker struct {
	store    GraphStore
	rulesDir string
	style    cypher.Style
	log      logging.Logger
}

// NewRuleScanChecker builds the rule-query checker. Rules are reloaded from
// rulesDir on every run, so edits take effect without a restart.
func NewRuleScanChecker(gs GraphStore, rulesDir string, style cypher.Style, log logging.Logger) *RuleScanChecker {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &RuleScanChecker{
		store:    gs,
		rulesDir: rulesDir,
		style:    style,
		log:      log.With(logging.Component("checker"), logging.Strategy(RuleScanCheckerName)),
	}
}

// Name implements Checker.
func (c *RuleScanChecker) Name() string { return RuleScanCheckerName }

// Validate writes the model, scans it with every rule query, and removes
// the scratch data. A rule whose execution fails contributes one error and
// the scan continues with the next rule.
func (c *RuleScanChecker) Validate(ctx context.Context, m *model.ArchitectureModel) *Result {
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
	log.Info("Writing model for rule scan",
		logging.Nodes(len(m.Nodes)), logging.Relationships(len(m.Relationships)))

	if err := c.store.ExecuteWrite(ctx, statement); err != nil {
		log.Error("Model write failed", logging.Error(err))
		rep.addError("Failed to write model to Neo4j for reporting validation")
		c.cleanup(ctx, rep, log)
		return rep.result(nil)
	}

	rules, warnings := loadRules(c.rulesDir)
	for _, w := range warnings {
		rep.addWarning(w)
	}

	violationCount := 0
	for _, rule := range rules {
		result, err := c.store.Query(ctx, rule.Text)
		if err != nil {
			log.Warn("Rule query failed", logging.Rule(rule.Name), logging.Error(err))
			rep.addError(fmt.Sprintf("Error running query %s: %v", rule.Name, err))
			continue
		}
		for _, row := range result.Rows {
			rep.addError(violations.FormatRuleRow(rule.Name, result.Columns, row))
			violationCount++
		}
	}

	c.cleanup(ctx, rep, log)

	summary := map[string]any{
		"nodes_tested":         len(m.Nodes),
		"relationships_tested": len(m.Relationships),
		"violation_count":      violationCount,
		"validation_time":      time.Now().Format(time.RFC3339),
		"run_id":               runID,
	}
	log.Info("Rule scan complete",
		logging.Violations(violationCount), logging.Latency(time.Since(start)))
	return rep.result(summary)
}

func (c *RuleScanChecker) cleanup(ctx context.Context, rep *reporter, log logging.Logger) {
	if err := c.store.Cleanup(ctx); err != nil {
		log.Warn("Cleanup failed", logging.Error(err))
		rep.addWarning("Database cleanup issue: " + err.Error())
	}
}
