package servicedef

import (
	"fmt"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ModuleType identifies a kind of LogicModule in the portal.
type ModuleType string

const (
	DataSource       ModuleType = "datasource"
	ConfigSource     ModuleType = "configsource"
	PropertySource   ModuleType = "propertysource"
	TopologySource   ModuleType = "topologysource"
	EventSource      ModuleType = "eventsource"
	LogSource        ModuleType = "logsource"
	DiagnosticSource ModuleType = "diagnosticsource"
)

// ModuleTypes lists every supported module type, in the order suites are normally run.
var ModuleTypes = []ModuleType{
	DataSource,
	ConfigSource,
	PropertySource,
	TopologySource,
	EventSource,
	LogSource,
	DiagnosticSource,
}

// ParseModuleType validates a module type tag. Matching is case-insensitive.
func ParseModuleType(s string) (ModuleType, error) {
	want := ModuleType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range ModuleTypes {
		if t == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown module type %q", s)
}

const (
	MessageCreateModule       = "CREATE_MODULE"
	MessageFetchModuleDetails = "FETCH_MODULE_DETAILS"
	MessageCommitModule       = "COMMIT_MODULE"
	MessageDeleteModule       = "DELETE_MODULE"
)

// Message is the envelope sent over the portal message channel.
type Message struct {
	Type    string        `json:"type"`
	Payload ldvalue.Value `json:"payload"`
}

// Response is what the portal message channel returns for every Message.
type Response struct {
	OK    bool          `json:"ok"`
	Error string        `json:"error,omitempty"`
	Data  ldvalue.Value `json:"data,omitempty"`
}

// AsValue returns the envelope as a single JSON value, for diagnostics.
func (m Message) AsValue() ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set("type", ldvalue.String(m.Type)).
		Set("payload", m.Payload).
		Build()
}

// PortalID returns the portal id from the payload, or "" if there is none.
func (m Message) PortalID() string {
	return m.Payload.GetByKey("portalId").StringValue()
}

// WithPortalID returns a copy of the message whose payload carries the given portal id.
func (m Message) WithPortalID(portalID string) Message {
	b := ldvalue.ObjectBuild()
	for _, k := range m.Payload.Keys() {
		b.Set(k, m.Payload.GetByKey(k))
	}
	b.Set("portalId", ldvalue.String(portalID))
	return Message{Type: m.Type, Payload: b.Build()}
}

func modulePayload(portalID string, moduleType ModuleType) ldvalue.ObjectBuilder {
	return ldvalue.ObjectBuild().
		Set("portalId", ldvalue.String(portalID)).
		Set("moduleType", ldvalue.String(string(moduleType)))
}

// CreateModuleMessage asks the portal to create a module from the given definition.
func CreateModuleMessage(portalID string, moduleType ModuleType, module ldvalue.Value) Message {
	return Message{
		Type:    MessageCreateModule,
		Payload: modulePayload(portalID, moduleType).Set("module", module).Build(),
	}
}

// FetchModuleMessage asks the portal for the current definition of a module.
func FetchModuleMessage(portalID string, moduleType ModuleType, id int) Message {
	return Message{
		Type:    MessageFetchModuleDetails,
		Payload: modulePayload(portalID, moduleType).Set("moduleId", ldvalue.Int(id)).Build(),
	}
}

// CommitModuleMessage asks the portal to apply a set of changes to an existing module.
func CommitModuleMessage(portalID string, moduleType ModuleType, id int, changes ldvalue.Value) Message {
	return Message{
		Type: MessageCommitModule,
		Payload: modulePayload(portalID, moduleType).
			Set("moduleId", ldvalue.Int(id)).
			Set("changes", changes).
			Build(),
	}
}

// DeleteModuleMessage asks the portal to delete a module.
func DeleteModuleMessage(portalID string, moduleType ModuleType, id int) Message {
	return Message{
		Type:    MessageDeleteModule,
		Payload: modulePayload(portalID, moduleType).Set("moduleId", ldvalue.Int(id)).Build(),
	}
}
