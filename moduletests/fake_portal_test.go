package moduletests

import (
	"context"
	"fmt"
	"sync"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// fakePortal is an in-memory portal that understands the four module messages.
type fakePortal struct {
	modules map[servicedef.ModuleType]map[int]map[string]interface{}
	nextID  int
	deletes int
	lock    sync.Mutex
}

func newFakePortal() *fakePortal {
	return &fakePortal{modules: make(map[servicedef.ModuleType]map[int]map[string]interface{}), nextID: 100}
}

func (p *fakePortal) count() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	n := 0
	for _, m := range p.modules {
		n += len(m)
	}
	return n
}

func (p *fakePortal) SendMessage(ctx context.Context, msg servicedef.Message) (servicedef.Response, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	moduleType := servicedef.ModuleType(msg.Payload.GetByKey("moduleType").StringValue())
	id := msg.Payload.GetByKey("moduleId").IntValue()
	byID := p.modules[moduleType]
	if byID == nil {
		byID = make(map[int]map[string]interface{})
		p.modules[moduleType] = byID
	}
	notFound := servicedef.Response{OK: false, Error: fmt.Sprintf("%s %d not found", moduleType, id)}

	switch msg.Type {
	case servicedef.MessageCreateModule:
		p.nextID++
		module, _ := msg.Payload.GetByKey("module").AsArbitraryValue().(map[string]interface{})
		module = deepCopy(module).(map[string]interface{})
		module["id"] = p.nextID
		byID[p.nextID] = module
		return servicedef.Response{OK: true, Data: ldvalue.CopyArbitraryValue(module)}, nil
	case servicedef.MessageFetchModuleDetails:
		module, ok := byID[id]
		if !ok {
			return notFound, nil
		}
		return servicedef.Response{OK: true, Data: ldvalue.CopyArbitraryValue(module)}, nil
	case servicedef.MessageCommitModule:
		module, ok := byID[id]
		if !ok {
			return notFound, nil
		}
		changes, _ := msg.Payload.GetByKey("changes").AsArbitraryValue().(map[string]interface{})
		deepMerge(module, changes)
		return servicedef.Response{OK: true, Data: ldvalue.CopyArbitraryValue(module)}, nil
	case servicedef.MessageDeleteModule:
		p.deletes++
		if _, ok := byID[id]; !ok {
			return notFound, nil
		}
		delete(byID, id)
		return servicedef.Response{OK: true}, nil
	}
	return servicedef.Response{OK: false, Error: "unknown message type " + msg.Type}, nil
}

func deepMerge(dest, src map[string]interface{}) {
	for k, v := range src {
		if sub, ok := v.(map[string]interface{}); ok {
			if existing, ok := dest[k].(map[string]interface{}); ok {
				deepMerge(existing, sub)
				continue
			}
		}
		dest[k] = deepCopy(v)
	}
}
