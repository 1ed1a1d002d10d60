package model

import (
	"encoding/json"
	"fmt"
)

// ProtocolKind tags the two wire forms a relationship protocol can take.
type ProtocolKind int

const (
	// KindNamed is the simple form: a bare protocol name like "HTTPS".
	KindNamed ProtocolKind = iota
	// KindStack is the layered form: a full OSI protocol stack.
	KindStack
)

func (k ProtocolKind) String() string {
	switch k {
	case KindNamed:
		return "Named"
	case KindStack:
		return "Stack"
	default:
		return "Unknown"
	}
}

// ProtocolStack describes the protocol carried by a relationship per OSI
// layer (layers 2-7). All layers are optional.
type ProtocolStack struct {
	DataLinkProtocol     string         `json:"data_link_protocol,omitempty"`
	NetworkProtocol      string         `json:"network_protocol,omitempty"`
	TransportProtocol    string         `json:"transport_protocol,omitempty"`
	SessionProtocol      string         `json:"session_protocol,omitempty"`
	PresentationProtocol string         `json:"presentation_protocol,omitempty"`
	ApplicationProtocol  string         `json:"application_protocol,omitempty"`
	Properties           map[string]any `json:"properties,omitempty"`
}

// Protocol is a tagged union over the two forms. On the wire it is either a
// JSON string (named form) or a JSON object (stack form); there is no
// discriminator field, so UnmarshalJSON decides by shape.
type Protocol struct {
	Kind  ProtocolKind
	Name  string
	Stack *ProtocolStack
}

// NamedProtocol builds the simple string form.
func NamedProtocol(name string) *Protocol {
	return &Protocol{Kind: KindNamed, Name: name}
}

// StackProtocol builds the layered form.
func StackProtocol(stack ProtocolStack) *Protocol {
	return &Protocol{Kind: KindStack, Stack: &stack}
}

func (p *Protocol) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Kind = KindNamed
		p.Name = name
		p.Stack = nil
		return nil
	}

	var stack ProtocolStack
	if err := json.Unmarshal(data, &stack); err != nil {
		return fmt.Errorf("protocol must be a string or a protocol stack object: %w", err)
	}
	p.Kind = KindStack
	p.Name = ""
	p.Stack = &stack
	return nil
}

func (p Protocol) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case KindNamed:
		return json.Marshal(p.Name)
	case KindStack:
		return json.Marshal(p.Stack)
	default:
		return nil, fmt.Errorf("unknown protocol kind %d", p.Kind)
	}
}

// String renders the protocol for summaries and logs.
func (p *Protocol) String() string {
	if p == nil {
		return ""
	}
	if p.Kind == KindNamed {
		return p.Name
	}
	if p.Stack != nil && p.Stack.ApplicationProtocol != "" {
		return p.Stack.ApplicationProtocol
	}
	return "stack"
}
