package catalog

import (
	"strings"

	"github.com/dd0wney/archval/pkg/model"
)

// AssignLabels enriches a node with its primary and secondary label. A
// catalog hit wins verbatim; otherwise the labels are derived from the
// node's dotted type. This mutates the node in place and is the node's
// one-time enrichment step: re-running it after a catalog change may
// produce different labels.
func (c *Catalog) AssignLabels(n *model.Node) {
	if c != nil {
		if at, ok := c.assetTypes[n.Type]; ok {
			n.PrimaryLabel = at.PrimaryLabel
			n.SecondaryLabel = at.SecondaryLabel
			return
		}
	}
	n.PrimaryLabel, n.SecondaryLabel = SplitTypeLabels(n.Type)
}

// AssignAllLabels enriches every node in the model.
func (c *Catalog) AssignAllLabels(m *model.ArchitectureModel) {
	for i := range m.Nodes {
		c.AssignLabels(&m.Nodes[i])
	}
}

// SplitTypeLabels derives a label pair from a dotted type string: the text
// before the first dot becomes the primary label and the remainder the
// secondary. A type with no dot is all primary. This never fails, so label
// resolution degrades gracefully when no catalog is available.
func SplitTypeLabels(typ string) (primary, secondary string) {
	if before, after, found := strings.Cut(typ, "."); found {
		return before, after
	}
	return typ, ""
}
