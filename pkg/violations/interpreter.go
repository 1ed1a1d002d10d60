// Package violations turns opaque graph-store failure text into attributable
// violation messages.
//
// A single trigger exception blob can bundle messages from several
// independently-firing triggers, where typically one carries the meaningful
// diagnostic and the rest are generic "transaction terminated" noise:
//
//	{code: Neo.ClientError...} {message: Error executing triggers
//	{01_check_asset_type_labels=Failed to invoke procedure `apoc.util.validate`:
//	Caused by: java.lang.RuntimeException: Asset type label validation failed: ...,
//	04_check_alternate_path_for_uses=The transaction has been terminated...}}
//
// Extraction is a prioritized cascade of independent rules; the first rule
// that produces a message wins. Keeping the rules separate (rather than one
// monolithic pattern) keeps each one testable against its own blob corpus.
package violations

import (
	"fmt"
	"regexp"
	"strings"
)

const terminatedNotice = "The transaction has been terminated"

// minMeaningfulLength filters out stub messages: anything this short is a
// generic abort notice, not a diagnostic.
const minMeaningfulLength = 20

var (
	// labeled RuntimeException sub-message: "<trigger>=...RuntimeException: <text>"
	runtimeMessageRe = regexp.MustCompile(`(?s)([^=,{]+)=.*?RuntimeException: `)
	// boundary where the next trigger's sub-message begins
	nextTriggerRe = regexp.MustCompile(`,\s*\d+_\w+=`)
	// trigger message wrapped in the /* ... */ convention
	delimitedTriggerRe = regexp.MustCompile(`(?s)Error executing triggers \{([^=]+)=.*?RuntimeException: /\*([^*]+)\*/`)
	// bare comment-delimited RuntimeException fragment
	delimitedRuntimeRe = regexp.MustCompile(`RuntimeException: /\*([^*]+)\*/`)
	// outer status-code/message envelope
	envelopePrefixRe = regexp.MustCompile(`^\{code: [^}]+\} \{message: `)
	envelopeSuffixRe = regexp.MustCompile(`\}+$`)
)

// ExtractTriggerMessage extracts the meaningful diagnostic from a raw
// trigger exception blob. It always returns something: if no rule matches,
// the blob is returned with its envelope stripped.
func ExtractTriggerMessage(blob string) string {
	for _, rule := range extractionRules {
		if msg, ok := rule(blob); ok {
			return msg
		}
	}
	return stripEnvelope(blob)
}

// extractionRules are tried in priority order.
var extractionRules = []func(string) (string, bool){
	extractLabeledRuntime,
	extractDelimitedTrigger,
	extractDelimitedRuntime,
}

// extractLabeledRuntime finds the first labeled RuntimeException sub-message
// with real content, stopping before the next trigger's sub-message. A
// sub-message that is only the generic abort notice is discarded.
func extractLabeledRuntime(blob string) (string, bool) {
	loc := runtimeMessageRe.FindStringSubmatchIndex(blob)
	if loc == nil {
		return "", false
	}
	trigger := strings.TrimSpace(blob[loc[2]:loc[3]])
	text := blob[loc[1]:]

	// Stop before the next trigger's sub-message or the closing brace,
	// whichever comes first.
	end := len(text)
	if b := nextTriggerRe.FindStringIndex(text); b != nil && b[0] < end {
		end = b[0]
	}
	if b := strings.IndexByte(text, '}'); b >= 0 && b < end {
		end = b
	}
	text = strings.TrimSpace(text[:end])

	if strings.Contains(text, terminatedNotice) || len(text) <= minMeaningfulLength {
		return "", false
	}

	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\"`, `"`)
	text = strings.TrimRight(text, ",} \n\t")

	return fmt.Sprintf("%s (from trigger: %s)", text, trigger), true
}

// extractDelimitedTrigger matches the comment-delimiter convention inside a
// trigger bundle and attributes the message to its trigger.
func extractDelimitedTrigger(blob string) (string, bool) {
	m := delimitedTriggerRe.FindStringSubmatch(blob)
	if m == nil {
		return "", false
	}
	trigger := strings.TrimSpace(m[1])
	text := strings.TrimSpace(m[2])
	return fmt.Sprintf("%s (from trigger: %s)", text, trigger), true
}

// extractDelimitedRuntime matches any comment-delimited RuntimeException
// fragment; no trigger attribution is possible at this level.
func extractDelimitedRuntime(blob string) (string, bool) {
	m := delimitedRuntimeRe.FindStringSubmatch(blob)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// stripEnvelope removes the status-code/message wrapper from a blob no
// other rule could interpret, returning the remainder verbatim.
func stripEnvelope(blob string) string {
	cleaned := envelopePrefixRe.ReplaceAllString(blob, "")
	if cleaned != blob {
		cleaned = envelopeSuffixRe.ReplaceAllString(cleaned, "")
	}
	return cleaned
}

// FormatRuleRow renders one rule-query result row as a flat, attributable
// violation string. Columns arrive in store order, so the rendering is
// reproducible run-over-run. No pattern matching is involved.
func FormatRuleRow(rule string, columns []string, row []any) string {
	pairs := make([]string, 0, len(columns))
	for i, col := range columns {
		var value any
		if i < len(row) {
			value = row[i]
		}
		pairs = append(pairs, fmt.Sprintf("%s: %v", col, value))
	}
	return fmt.Sprintf("[%s] %s", rule, strings.Join(pairs, "; "))
}
