package cypher

import (
	"sort"
	"strings"
	"testing"

	"github.com/dd0wney/archval/pkg/model"
)

func twoNodeModel(t *testing.T) *model.ArchitectureModel {
	t.Helper()
	m, err := model.New(
		[]model.Node{
			{ComponentID: 1, Name: "A", Type: "HW.Server"},
			{ComponentID: 2, Name: "B", Type: "SystemLayer.OS"},
		},
		[]model.Relationship{
			{Source: "A", Target: "B", Type: "hosts"},
		},
	)
	if err != nil {
		t.Fatalf("model.New failed: %v", err)
	}
	return m
}

// TestCompile_TwoNodesOneRelationship covers the canonical shape: two node
// patterns followed by one relationship pattern, relationship last.
func TestCompile_TwoNodesOneRelationship(t *testing.T) {
	out := Compile(twoNodeModel(t), StyleSingle)

	if !strings.HasPrefix(out, "CREATE ") {
		t.Fatalf("Expected CREATE prefix, got %q", out)
	}
	if got := strings.Count(out, ")-[:"); got != 1 {
		t.Errorf("Expected 1 relationship pattern, got %d in %q", got, out)
	}

	aIdx := strings.Index(out, "(A:HW:Server ")
	bIdx := strings.Index(out, "(B:SystemLayer:OS ")
	relIdx := strings.Index(out, "(A)-[:hosts ")
	if aIdx < 0 || bIdx < 0 || relIdx < 0 {
		t.Fatalf("Missing expected patterns in %q", out)
	}
	if relIdx < aIdx || relIdx < bIdx {
		t.Errorf("Relationship pattern must appear after both node patterns: %q", out)
	}
}

// TestCompile_StylesAgreeOnContent verifies the two styles produce the same
// set of statements, differing only in separators.
func TestCompile_StylesAgreeOnContent(t *testing.T) {
	m := twoNodeModel(t)

	single := Compile(m, StyleSingle)
	multi := Compile(m, StyleMultiline)

	splitStatements := func(s, sep string) []string {
		s = strings.TrimPrefix(s, "CREATE ")
		parts := strings.Split(s, sep)
		sort.Strings(parts)
		return parts
	}

	singleParts := splitStatements(single, ", (")
	multiParts := splitStatements(multi, ",\n       (")
	if len(singleParts) != len(multiParts) {
		t.Fatalf("Statement counts differ: %d vs %d", len(singleParts), len(multiParts))
	}
	for i := range singleParts {
		a := strings.TrimPrefix(singleParts[i], "(")
		b := strings.TrimPrefix(multiParts[i], "(")
		if a != b {
			t.Errorf("Statement %d differs between styles:\n  single: %s\n  multi:  %s", i, a, b)
		}
	}
}

func TestCompile_EmptyModel(t *testing.T) {
	m := &model.ArchitectureModel{}
	if out := Compile(m, StyleMultiline); out != EmptyModelMarker {
		t.Errorf("Expected empty-model marker, got %q", out)
	}
}

// TestCompile_SkipsDanglingRelationships verifies unknown endpoints drop the
// relationship without failing compilation.
func TestCompile_SkipsDanglingRelationships(t *testing.T) {
	m, err := model.New(
		[]model.Node{{ComponentID: 1, Name: "A", Type: "HW.Server"}},
		[]model.Relationship{
			{Source: "A", Target: "Ghost", Type: "hosts"},
			{Source: "Nobody", Target: "A", Type: "uses"},
		},
	)
	if err != nil {
		t.Fatalf("model.New failed: %v", err)
	}

	out := Compile(m, StyleSingle)
	if strings.Contains(out, "Ghost") || strings.Contains(out, "Nobody") {
		t.Errorf("Dangling relationship leaked into output: %q", out)
	}
	if strings.Contains(out, ")-[:") {
		t.Errorf("Expected no relationship patterns, got %q", out)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Web Server", "Web_Server"},
		{"db-primary", "db_primary"},
		{"svc.auth", "svc_auth"},
		{"cache#1!", "cache_1_"},
		{"3proxy", "node_3proxy"},
		{"plain_name", "plain_name"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Distinct names can collide after sanitization. That is accepted behavior,
// documented here so a change to it fails loudly.
func TestSanitizeName_KnownCollision(t *testing.T) {
	a := SanitizeName("web server")
	b := SanitizeName("web-server")
	if a != b {
		t.Errorf("Expected %q and %q to collide, got %q and %q", "web server", "web-server", a, b)
	}
}

func TestFormatNodeLabels(t *testing.T) {
	tests := []struct {
		name string
		node model.Node
		want string
	}{
		{
			name: "assigned pair wins",
			node: model.Node{Type: "HW.Server", PrimaryLabel: "Hardware", SecondaryLabel: "Rack"},
			want: "Hardware:Rack",
		},
		{
			name: "primary only",
			node: model.Node{Type: "HW.Server", PrimaryLabel: "Hardware"},
			want: "Hardware",
		},
		{
			name: "derived from dotted type",
			node: model.Node{Type: "Service.Web"},
			want: "Service:Web",
		},
		{
			name: "derived from plain type",
			node: model.Node{Type: "Network"},
			want: "Network",
		},
		{
			name: "empty type falls back to default",
			node: model.Node{},
			want: DefaultLabel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNodeLabels(tt.node); got != tt.want {
				t.Errorf("FormatNodeLabels = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatNodeProperties_OrderAndQuoting(t *testing.T) {
	n := model.Node{
		ComponentID:  7,
		Name:         "auth",
		Type:         "Service.Auth",
		PrimaryLabel: "Service",
		Properties: map[string]any{
			"zone":     "dmz",
			"replicas": 3,
			"critical": true,
		},
	}

	got := FormatNodeProperties(n)
	want := "{component_id: '7', name: 'auth', type: 'Service.Auth', primary_label: 'Service', critical: true, replicas: 3, zone: 'dmz'}"
	if got != want {
		t.Errorf("FormatNodeProperties:\n got  %s\n want %s", got, want)
	}

	// Identical input must render identically.
	if again := FormatNodeProperties(n); again != got {
		t.Errorf("Rendering is not deterministic:\n first  %s\n second %s", got, again)
	}
}

func TestFormatRelationshipProperties_NamedProtocol(t *testing.T) {
	r := model.Relationship{
		Source: "A", Target: "B", Type: "connects",
		Protocol:   model.NamedProtocol("HTTPS"),
		Properties: map[string]any{"weight": 2},
	}
	got := FormatRelationshipProperties(r)
	want := "{protocol: 'HTTPS', weight: 2}"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFormatRelationshipProperties_StackProtocol(t *testing.T) {
	r := model.Relationship{
		Source: "A", Target: "B", Type: "connects",
		Protocol: model.StackProtocol(model.ProtocolStack{
			ApplicationProtocol: "HTTP",
			TransportProtocol:   "TCP",
			NetworkProtocol:     "IP",
			Properties:          map[string]any{"port": 8080, "tls": false},
		}),
		Properties: map[string]any{"port": 443},
	}

	got := FormatRelationshipProperties(r)
	want := "{application_protocol: 'HTTP', transport_protocol: 'TCP', network_protocol: 'IP', protocol_port: 8080, protocol_tls: false, port: 443}"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFormatRelationshipProperties_Empty(t *testing.T) {
	r := model.Relationship{Source: "A", Target: "B", Type: "uses"}
	if got := FormatRelationshipProperties(r); got != "{}" {
		t.Errorf("Expected empty property map, got %s", got)
	}
}

func TestQuote_EscapesHostileValues(t *testing.T) {
	n := model.Node{
		ComponentID: 1,
		Name:        "it's-a-name",
		Type:        "HW.Server",
	}
	got := FormatNodeProperties(n)
	if !strings.Contains(got, `name: 'it\'s-a-name'`) {
		t.Errorf("Single quote not escaped: %s", got)
	}
}

func TestCompileRelationships_WithoutVarMap(t *testing.T) {
	rels := []model.Relationship{
		{Source: "web server", Target: "db", Type: "connects"},
	}
	out := CompileRelationships(rels, nil, StyleSingle)
	if !strings.Contains(out, "(web_server)-[:connects {}]->(db)") {
		t.Errorf("Expected sanitized endpoints, got %q", out)
	}
}
