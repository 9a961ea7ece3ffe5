package framework

import (
	"context"
	"errors"
	"sync"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type fakeMessenger struct {
	received []servicedef.Message
	handler  func(servicedef.Message) (servicedef.Response, error)
	lock     sync.Mutex
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{}
}

func (m *fakeMessenger) SendMessage(ctx context.Context, msg servicedef.Message) (servicedef.Response, error) {
	m.lock.Lock()
	m.received = append(m.received, msg)
	handler := m.handler
	m.lock.Unlock()
	if handler != nil {
		return handler(msg)
	}
	return servicedef.Response{OK: true}, nil
}

func (m *fakeMessenger) messages() []servicedef.Message {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]servicedef.Message(nil), m.received...)
}

func (m *fakeMessenger) deletes() []ModuleRef {
	var ret []ModuleRef
	for _, msg := range m.messages() {
		if msg.Type == servicedef.MessageDeleteModule {
			ret = append(ret, ModuleRef{
				Type: servicedef.ModuleType(msg.Payload.GetByKey("moduleType").StringValue()),
				ID:   msg.Payload.GetByKey("moduleId").IntValue(),
			})
		}
	}
	return ret
}

type recordingObserver struct {
	events    []ProgressEvent
	completed []TestResult
}

func (o *recordingObserver) Progress(event ProgressEvent)    { o.events = append(o.events, event) }
func (o *recordingObserver) TestCompleted(result TestResult) { o.completed = append(o.completed, result) }

func (o *recordingObserver) phases() []Phase {
	var ret []Phase
	for _, e := range o.events {
		if len(ret) == 0 || ret[len(ret)-1] != e.Phase {
			ret = append(ret, e.Phase)
		}
	}
	return ret
}

func passingTest(id string) TestCase {
	return TestCase{ID: id, Name: "test " + id, Run: func(context.Context, *TestContext) error { return nil }}
}

func failingTest(id, message string) TestCase {
	return TestCase{ID: id, Name: "test " + id, Run: func(context.Context, *TestContext) error { return errors.New(message) }}
}

func createsModule(moduleType servicedef.ModuleType, id int) TestFunc {
	return func(ctx context.Context, tc *TestContext) error {
		resp, err := tc.SendMessage(ctx, servicedef.CreateModuleMessage("", moduleType, ldvalue.ObjectBuild().Build()))
		if err != nil {
			return err
		}
		if !resp.OK {
			return errors.New(resp.Error)
		}
		tc.RegisterModuleForCleanup(moduleType, id)
		return nil
	}
}

func logMessages(tc *TestContext) []string {
	var ret []string
	for _, m := range tc.Output() {
		ret = append(ret, m.Message)
	}
	return ret
}
