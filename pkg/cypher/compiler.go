// Package cypher compiles architecture models into Cypher CREATE statements.
// Compilation is deterministic: identical input always renders identical
// text, so generated scripts can be diffed and asserted on in tests.
package cypher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/archval/pkg/catalog"
	"github.com/dd0wney/archval/pkg/model"
)

// Style selects how compiled statements are joined.
type Style string

const (
	// StyleMultiline separates statements with a comma, newline and
	// alignment indentation under the CREATE keyword.
	StyleMultiline Style = "multiline"
	// StyleSingle joins statements with a plain comma and space.
	StyleSingle Style = "single"
)

// EmptyModelMarker is emitted for a model with no nodes. It is a valid
// no-op for the store rather than a malformed statement.
const EmptyModelMarker = "// No nodes to create"

const multilineSeparator = ",\n       "

// DefaultLabel is used when a node has no labels and no type to derive
// them from.
const DefaultLabel = "Component"

// SanitizeName produces a graph-safe variable identifier from a node name.
// Whitespace, hyphens and dots become underscores, any other character
// outside [A-Za-z0-9_] becomes an underscore, and a leading digit gets a
// "node_" prefix. The mapping is pure and total but not injective: names
// that differ only in collapsed characters sanitize to the same identifier.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '.':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "node_" + s
	}
	return s
}

// FormatNodeLabels renders the label clause for a node: the assigned label
// pair if present, otherwise labels derived from the dotted type, otherwise
// the default label.
func FormatNodeLabels(n model.Node) string {
	var labels []string
	if n.PrimaryLabel != "" {
		labels = append(labels, n.PrimaryLabel)
	}
	if n.SecondaryLabel != "" {
		labels = append(labels, n.SecondaryLabel)
	}

	if len(labels) == 0 && n.Type != "" {
		primary, secondary := catalog.SplitTypeLabels(n.Type)
		labels = append(labels, primary)
		if secondary != "" {
			labels = append(labels, secondary)
		}
	}

	if len(labels) == 0 {
		return DefaultLabel
	}
	return strings.Join(labels, ":")
}

// FormatNodeProperties renders a node's property map. Fixed fields come
// first in declared order; the open properties map follows in sorted key
// order so rendering is reproducible.
func FormatNodeProperties(n model.Node) string {
	props := newPropertyList()
	props.addString("component_id", fmt.Sprintf("%d", n.ComponentID))
	props.addString("name", n.Name)
	props.addString("type", n.Type)
	if n.PrimaryLabel != "" {
		props.addString("primary_label", n.PrimaryLabel)
	}
	if n.SecondaryLabel != "" {
		props.addString("secondary_label", n.SecondaryLabel)
	}
	props.addOpenMap("", n.Properties)
	return props.render()
}

// FormatRelationshipProperties renders a relationship's property map. A
// stacked protocol contributes its application protocol first, then the
// remaining layers, then its own properties under a protocol_ prefix so
// they cannot collide with top-level relationship properties. A named
// protocol contributes a single protocol field.
func FormatRelationshipProperties(r model.Relationship) string {
	props := newPropertyList()

	if p := r.Protocol; p != nil {
		switch p.Kind {
		case model.KindStack:
			if stack := p.Stack; stack != nil {
				if stack.ApplicationProtocol != "" {
					props.addString("application_protocol", stack.ApplicationProtocol)
				}
				if stack.TransportProtocol != "" {
					props.addString("transport_protocol", stack.TransportProtocol)
				}
				if stack.PresentationProtocol != "" {
					props.addString("presentation_protocol", stack.PresentationProtocol)
				}
				if stack.NetworkProtocol != "" {
					props.addString("network_protocol", stack.NetworkProtocol)
				}
				props.addOpenMap("protocol_", stack.Properties)
			}
		case model.KindNamed:
			if p.Name != "" {
				props.addString("protocol", p.Name)
			}
		}
	}

	props.addOpenMap("", r.Properties)
	return props.render()
}

// Compile renders the whole model as one CREATE command: one node pattern
// per node in model order, then one relationship pattern per relationship
// in model order. Relationships whose endpoints are not known node names
// are skipped; a partially-specified model still compiles.
func Compile(m *model.ArchitectureModel, style Style) string {
	if len(m.Nodes) == 0 {
		return EmptyModelMarker
	}

	vars := make(map[string]string, len(m.Nodes))
	for _, n := range m.Nodes {
		vars[n.Name] = SanitizeName(n.Name)
	}

	statements := make([]string, 0, len(m.Nodes)+len(m.Relationships))
	for _, n := range m.Nodes {
		statements = append(statements, nodePattern(n, vars[n.Name]))
	}
	for _, r := range m.Relationships {
		source, okS := vars[r.Source]
		target, okT := vars[r.Target]
		if !okS || !okT {
			continue
		}
		statements = append(statements, relationshipPattern(r, source, target))
	}

	return join(statements, style)
}

// CompileNodes renders only node patterns.
func CompileNodes(nodes []model.Node, style Style) string {
	if len(nodes) == 0 {
		return EmptyModelMarker
	}
	statements := make([]string, 0, len(nodes))
	for _, n := range nodes {
		statements = append(statements, nodePattern(n, SanitizeName(n.Name)))
	}
	return join(statements, style)
}

// CompileRelationships renders only relationship patterns against the given
// name-to-variable mapping. When vars is nil every endpoint is sanitized
// directly, so no relationship is skipped.
func CompileRelationships(rels []model.Relationship, vars map[string]string, style Style) string {
	if len(rels) == 0 {
		return "// No relationships to create"
	}
	statements := make([]string, 0, len(rels))
	for _, r := range rels {
		source, target := r.Source, r.Target
		if vars != nil {
			var ok bool
			if source, ok = vars[r.Source]; !ok {
				continue
			}
			if target, ok = vars[r.Target]; !ok {
				continue
			}
		} else {
			source = SanitizeName(source)
			target = SanitizeName(target)
		}
		statements = append(statements, relationshipPattern(r, source, target))
	}
	if len(statements) == 0 {
		return "// No relationships to create"
	}
	return join(statements, style)
}

func nodePattern(n model.Node, variable string) string {
	return fmt.Sprintf("(%s:%s %s)", variable, FormatNodeLabels(n), FormatNodeProperties(n))
}

func relationshipPattern(r model.Relationship, source, target string) string {
	return fmt.Sprintf("(%s)-[:%s %s]->(%s)", source, r.Type, FormatRelationshipProperties(r), target)
}

func join(statements []string, style Style) string {
	if style == StyleSingle {
		return "CREATE " + strings.Join(statements, ", ")
	}
	return "CREATE " + strings.Join(statements, multilineSeparator)
}

// propertyList accumulates key/value pairs in emission order.
type propertyList struct {
	pairs []string
}

func newPropertyList() *propertyList {
	return &propertyList{}
}

func (p *propertyList) addString(key, value string) {
	p.pairs = append(p.pairs, fmt.Sprintf("%s: %s", key, quote(value)))
}

func (p *propertyList) addValue(key string, value any) {
	if s, ok := value.(string); ok {
		p.addString(key, s)
		return
	}
	p.pairs = append(p.pairs, fmt.Sprintf("%s: %v", key, value))
}

// addOpenMap flattens an open property map in sorted key order, optionally
// namespacing every key with a prefix.
func (p *propertyList) addOpenMap(prefix string, m map[string]any) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.addValue(prefix+k, m[k])
	}
}

func (p *propertyList) render() string {
	return "{" + strings.Join(p.pairs, ", ") + "}"
}

// quote renders a string literal. Backslashes and single quotes are escaped
// so arbitrary property values cannot break the statement.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
