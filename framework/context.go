package framework

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Messenger is the request/response channel to the portal. Implementations must be safe to
// call repeatedly; the framework never calls them concurrently.
type Messenger interface {
	SendMessage(ctx context.Context, msg servicedef.Message) (servicedef.Response, error)
}

// MessengerFunc adapts a plain function to Messenger.
type MessengerFunc func(ctx context.Context, msg servicedef.Message) (servicedef.Response, error)

func (f MessengerFunc) SendMessage(ctx context.Context, msg servicedef.Message) (servicedef.Response, error) {
	return f(ctx, msg)
}

// ModuleRef identifies a module that was created during a run.
type ModuleRef struct {
	Type servicedef.ModuleType
	ID   int
}

func (r ModuleRef) String() string {
	return fmt.Sprintf("%s %d", r.Type, r.ID)
}

// TestContext is the state shared by every setup, run and teardown procedure in one run of
// the orchestrator. There is exactly one per run; it is always passed by pointer and mutated
// in place.
//
// Besides identifying the portal session, it provides a message channel to the portal, a
// registry of created modules that must be deleted at the end of each suite, a timestamped
// log, and the last request and response seen by the current test.
type TestContext struct {
	PortalID    string
	PortalLabel string

	messenger    Messenger
	log          CapturingLogger
	sink         Logger
	created      *orderedmap.OrderedMap[servicedef.ModuleType, []int]
	lastRequest  ldvalue.Value
	lastResponse ldvalue.Value
	lock         sync.Mutex
}

// NewTestContext creates the context for a run. It performs no validation.
func NewTestContext(portalID, portalLabel string, messenger Messenger, sink Logger) *TestContext {
	if sink == nil {
		sink = NullLogger()
	}
	return &TestContext{
		PortalID:    portalID,
		PortalLabel: portalLabel,
		messenger:   messenger,
		sink:        sink,
		created:     orderedmap.New[servicedef.ModuleType, []int](),
	}
}

// Log appends a timestamped line to the run log and forwards it to the external sink.
func (c *TestContext) Log(format string, args ...interface{}) {
	c.log.Printf(format, args...)
	c.sink.Printf(format, args...)
}

// Output returns everything logged so far in this run.
func (c *TestContext) Output() CapturedOutput {
	return c.log.Output()
}

// RegisterModuleForCleanup records a module that the cleanup pass must delete.
func (c *TestContext) RegisterModuleForCleanup(moduleType servicedef.ModuleType, id int) {
	c.lock.Lock()
	ids, _ := c.created.Get(moduleType)
	c.created.Set(moduleType, append(ids, id))
	c.lock.Unlock()
	c.Log("registered %s %d for cleanup", moduleType, id)
}

// ForgetModule removes a module from the cleanup registry. Tests that delete a module
// themselves use this so the cleanup pass does not try again.
func (c *TestContext) ForgetModule(moduleType servicedef.ModuleType, id int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	ids, ok := c.created.Get(moduleType)
	if !ok {
		return
	}
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		c.created.Delete(moduleType)
	} else {
		c.created.Set(moduleType, ids)
	}
}

// CreatedModules returns the ids registered for a module type, oldest first.
func (c *TestContext) CreatedModules(moduleType servicedef.ModuleType) []int {
	c.lock.Lock()
	defer c.lock.Unlock()
	ids, _ := c.created.Get(moduleType)
	return append([]int(nil), ids...)
}

// LastCreatedModule returns the most recently registered id for a module type.
func (c *TestContext) LastCreatedModule(moduleType servicedef.ModuleType) (int, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	ids, _ := c.created.Get(moduleType)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[len(ids)-1], true
}

// PendingCleanup lists every registered module in registration order: types in the order
// they were first registered, ids within a type in the order they were added.
func (c *TestContext) PendingCleanup() []ModuleRef {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.pendingLocked()
}

func (c *TestContext) pendingLocked() []ModuleRef {
	var refs []ModuleRef
	for pair := c.created.Oldest(); pair != nil; pair = pair.Next() {
		for _, id := range pair.Value {
			refs = append(refs, ModuleRef{Type: pair.Key, ID: id})
		}
	}
	return refs
}

// takePendingCleanup empties the registry and returns what it held.
func (c *TestContext) takePendingCleanup() []ModuleRef {
	c.lock.Lock()
	defer c.lock.Unlock()
	refs := c.pendingLocked()
	c.created = orderedmap.New[servicedef.ModuleType, []int]()
	return refs
}

// CaptureRequest records the last request payload seen by the current test.
func (c *TestContext) CaptureRequest(v ldvalue.Value) {
	c.lock.Lock()
	c.lastRequest = v
	c.lock.Unlock()
}

// CaptureResponse records the last response payload seen by the current test.
func (c *TestContext) CaptureResponse(v ldvalue.Value) {
	c.lock.Lock()
	c.lastResponse = v
	c.lock.Unlock()
}

func (c *TestContext) LastRequest() ldvalue.Value {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastRequest
}

func (c *TestContext) LastResponse() ldvalue.Value {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastResponse
}

func (c *TestContext) resetCapture() {
	c.lock.Lock()
	c.lastRequest = ldvalue.Null()
	c.lastResponse = ldvalue.Null()
	c.lock.Unlock()
}

// SendMessage sends a message to the portal, filling in the run's portal id if the message
// does not carry one, and captures both sides of the exchange for diagnostics.
func (c *TestContext) SendMessage(ctx context.Context, msg servicedef.Message) (servicedef.Response, error) {
	if msg.PortalID() == "" && c.PortalID != "" {
		msg = msg.WithPortalID(c.PortalID)
	}
	c.CaptureRequest(msg.AsValue())
	resp, err := c.deliver(ctx, msg)
	if err != nil {
		c.CaptureResponse(ldvalue.ObjectBuild().Set("error", ldvalue.String(err.Error())).Build())
		return resp, err
	}
	c.CaptureResponse(responseValue(resp))
	return resp, nil
}

func (c *TestContext) deliver(ctx context.Context, msg servicedef.Message) (resp servicedef.Response, err error) {
	if c.messenger == nil {
		return servicedef.Response{}, errors.New("no portal message channel is configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("message channel panicked: %+v", r)
		}
	}()
	return c.messenger.SendMessage(ctx, msg)
}

func responseValue(resp servicedef.Response) ldvalue.Value {
	b := ldvalue.ObjectBuild().Set("ok", ldvalue.Bool(resp.OK))
	if resp.Error != "" {
		b.Set("error", ldvalue.String(resp.Error))
	}
	if !resp.Data.IsNull() {
		b.Set("data", resp.Data)
	}
	return b.Build()
}
