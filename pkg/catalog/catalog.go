// Package catalog loads the read-only CSV catalogs that describe the known
// asset types, protocols, and relationship patterns, and derives node labels
// from them. The catalogs are collaborators: their absence degrades to
// syntactic labeling, never to a failure.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AssetType is one row of the asset-type catalog: a dotted type string and
// the label pair the graph store matches on.
type AssetType struct {
	Type           string `json:"type"`
	PrimaryLabel   string `json:"primary_label"`
	SecondaryLabel string `json:"secondary_label,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Protocol is one row of the protocol catalog.
type Protocol struct {
	Name         string   `json:"name"`
	ExtendedName string   `json:"extended_name,omitempty"`
	Description  string   `json:"description"`
	Layer        string   `json:"layer"`
	Relationship string   `json:"relationship"`
	Ports        []string `json:"ports,omitempty"`
}

// RelationshipType is one row of the relationship-type catalog.
type RelationshipType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// RelationshipPattern describes which target types a (source type,
// relationship type) pair may legally point at.
type RelationshipPattern struct {
	Source  string   `json:"source"`
	Type    string   `json:"type"`
	Targets []string `json:"target"`
}

// Catalog holds all loaded catalog data. A zero Catalog is usable: every
// lookup misses and label resolution falls back to type splitting.
type Catalog struct {
	assetTypes map[string]AssetType
	protocols  []Protocol
	relTypes   []RelationshipType
	patterns   []RelationshipPattern
}

// Load reads the catalog CSV files from dir. Missing files are tolerated:
// the corresponding catalog is simply empty. A present but unreadable file
// is an error.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{assetTypes: make(map[string]AssetType)}

	rows, err := readCSV(filepath.Join(dir, "asset_types.csv"))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		at := AssetType{
			Type:           row["AssetType"],
			PrimaryLabel:   row["Primary Label"],
			SecondaryLabel: row["Secondary Label"],
			Description:    row["Description"],
		}
		if at.Type != "" {
			c.assetTypes[at.Type] = at
		}
	}

	rows, err = readCSV(filepath.Join(dir, "protocols.csv"))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		var ports []string
		if raw := strings.TrimSpace(row["Ports"]); raw != "" {
			for _, p := range strings.Split(raw, ",") {
				ports = append(ports, strings.TrimSpace(p))
			}
		}
		c.protocols = append(c.protocols, Protocol{
			Name:         row["Name"],
			ExtendedName: row["Extended Name"],
			Description:  row["Description"],
			Layer:        row["Layer"],
			Relationship: row["Relationship"],
			Ports:        ports,
		})
	}

	rows, err = readCSV(filepath.Join(dir, "relationships.csv"))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c.relTypes = append(c.relTypes, RelationshipType{
			Type:        row["type"],
			Description: row["description"],
		})
	}

	rows, err = readCSV(filepath.Join(dir, "relationship_patterns.csv"))
	if err != nil {
		return nil, err
	}
	c.patterns = groupPatterns(rows)

	return c, nil
}

// groupPatterns collapses one-row-per-target CSV data into patterns keyed by
// (source, type), preserving first-seen order.
func groupPatterns(rows []map[string]string) []RelationshipPattern {
	type key struct{ source, relType string }
	index := make(map[key]int)
	var patterns []RelationshipPattern

	for _, row := range rows {
		k := key{row["source"], row["relationship_type"]}
		if i, ok := index[k]; ok {
			patterns[i].Targets = append(patterns[i].Targets, row["target"])
			continue
		}
		index[k] = len(patterns)
		patterns = append(patterns, RelationshipPattern{
			Source:  k.source,
			Type:    k.relType,
			Targets: []string{row["target"]},
		})
	}
	return patterns
}

// readCSV reads a headered CSV file into one map per record. The delimiter
// is detected from the header line: semicolon if present, comma otherwise.
// A missing file returns no rows and no error.
func readCSV(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading catalog %s: %w", filepath.Base(path), err)
	}

	content := string(data)
	reader := csv.NewReader(strings.NewReader(content))
	firstLine := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		firstLine = content[:i]
	}
	if strings.Contains(firstLine, ";") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", filepath.Base(path), err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[strings.TrimSpace(header[i])] = field
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AssetTypes returns all loaded asset types.
func (c *Catalog) AssetTypes() []AssetType {
	out := make([]AssetType, 0, len(c.assetTypes))
	for _, at := range c.assetTypes {
		out = append(out, at)
	}
	return out
}

// LookupAssetType returns the asset type for a dotted type string.
func (c *Catalog) LookupAssetType(typ string) (AssetType, bool) {
	at, ok := c.assetTypes[typ]
	return at, ok
}

// Protocols returns all loaded protocols.
func (c *Catalog) Protocols() []Protocol { return c.protocols }

// ProtocolsByLayer returns protocols for the given OSI layer name.
func (c *Catalog) ProtocolsByLayer(layer string) []Protocol {
	var out []Protocol
	for _, p := range c.protocols {
		if strings.EqualFold(p.Layer, layer) {
			out = append(out, p)
		}
	}
	return out
}

// RelationshipTypes returns all loaded relationship types.
func (c *Catalog) RelationshipTypes() []RelationshipType { return c.relTypes }

// Patterns returns all loaded relationship patterns.
func (c *Catalog) Patterns() []RelationshipPattern { return c.patterns }
