package moduletests

import (
	"embed"
	"io/fs"
	"path"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture is the base definition of a module of one type, plus the script variants the
// suite creates it with.
type Fixture struct {
	ModuleType servicedef.ModuleType `yaml:"moduleType"`
	Name       string                `yaml:"name"`

	// ScriptObject is the key path to the object that holds the script fields. An empty
	// path means the module itself.
	ScriptObject []string `yaml:"scriptObject"`

	// CompareKeys are the properties a fetched module must have kept from the created one.
	CompareKeys []string `yaml:"compareKeys"`

	Module   map[string]interface{} `yaml:"module"`
	Variants []Variant              `yaml:"variants"`
}

// Variant is one way of scripting a module, such as groovy or powershell.
type Variant struct {
	Name      string                 `yaml:"name"`
	ScriptKey string                 `yaml:"scriptKey"`
	Fields    map[string]interface{} `yaml:"fields"`
}

// LoadFixtures parses the embedded fixtures, in servicedef.ModuleTypes order.
func LoadFixtures() ([]Fixture, error) {
	byType := make(map[servicedef.ModuleType]Fixture)
	names, err := fs.Glob(fixtureFiles, "fixtures/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		data, err := fixtureFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}
		f, err := parseFixture(data)
		if err != nil {
			return nil, errors.Wrapf(err, "fixture %s", path.Base(name))
		}
		if _, dup := byType[f.ModuleType]; dup {
			return nil, errors.Errorf("fixture %s: duplicate module type %s", path.Base(name), f.ModuleType)
		}
		byType[f.ModuleType] = f
	}
	var ret []Fixture
	for _, t := range servicedef.ModuleTypes {
		if f, ok := byType[t]; ok {
			ret = append(ret, f)
		}
	}
	return ret, nil
}

func parseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, errors.Wrap(err, "parsing")
	}
	if _, err := servicedef.ParseModuleType(string(f.ModuleType)); err != nil {
		return Fixture{}, err
	}
	if len(f.Module) == 0 {
		return Fixture{}, errors.New("no module definition")
	}
	if len(f.Variants) == 0 {
		return Fixture{}, errors.New("no variants")
	}
	for _, v := range f.Variants {
		if v.Name == "" || v.ScriptKey == "" {
			return Fixture{}, errors.New("every variant needs a name and a scriptKey")
		}
	}
	return f, nil
}

// Build returns the module payload for a variant, with the given name.
func (f Fixture) Build(v Variant, name string) ldvalue.Value {
	module := deepCopy(f.Module).(map[string]interface{})
	module["name"] = name
	mergeInto(objectAt(module, f.ScriptObject), v.Fields)
	return ldvalue.CopyArbitraryValue(module)
}

// ScriptChange returns the commit payload that replaces the variant's script.
func (f Fixture) ScriptChange(v Variant, script string) ldvalue.Value {
	changes := make(map[string]interface{})
	target := objectAt(changes, f.ScriptObject)
	mergeInto(target, v.Fields)
	target[v.ScriptKey] = script
	return ldvalue.CopyArbitraryValue(changes)
}

// ScriptOf extracts the variant's script from a module payload.
func (f Fixture) ScriptOf(module ldvalue.Value, v Variant) string {
	obj := module
	for _, key := range f.ScriptObject {
		obj = obj.GetByKey(key)
	}
	return obj.GetByKey(v.ScriptKey).StringValue()
}

// objectAt returns the nested map at keys, creating maps along the way.
func objectAt(root map[string]interface{}, keys []string) map[string]interface{} {
	obj := root
	for _, key := range keys {
		next, ok := obj[key].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			obj[key] = next
		}
		obj = next
	}
	return obj
}

func mergeInto(dest, src map[string]interface{}) {
	for k, v := range src {
		dest[k] = deepCopy(v)
	}
}

func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = deepCopy(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = deepCopy(e)
		}
		return s
	}
	return v
}
