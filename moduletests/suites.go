package moduletests

import (
	"context"
	"fmt"
	"time"

	"github.com/logicmonitor/lm-module-tests/framework"
	"github.com/logicmonitor/lm-module-tests/framework/assertion"
	"github.com/logicmonitor/lm-module-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const deleteWaitTimeout = 10 * time.Second

// AllSuites returns one suite per module type, in servicedef.ModuleTypes order.
func AllSuites() []framework.TestSuite {
	fixtures, err := LoadFixtures()
	if err != nil {
		// the fixtures are compiled in, so this can only be a bad edit to one of them
		panic(err)
	}
	suites := make([]framework.TestSuite, 0, len(fixtures))
	for _, f := range fixtures {
		suites = append(suites, NewModuleSuite(f))
	}
	return suites
}

// SuitesFor returns the suites for the given module types. An empty list returns all.
func SuitesFor(types []servicedef.ModuleType) []framework.TestSuite {
	return framework.FilterSuitesByType(AllSuites(), types)
}

// NewModuleSuite builds the standard suite for a fixture. The first variant is the one used
// by tests that are not about a specific variant.
func NewModuleSuite(f Fixture) framework.TestSuite {
	suite := framework.TestSuite{
		ID:          string(f.ModuleType),
		Name:        f.Name,
		Description: fmt.Sprintf("Create, fetch, commit and delete %s modules", f.Name),
		ModuleType:  f.ModuleType,
	}
	for _, v := range f.Variants {
		suite.Tests = append(suite.Tests, createTest(f, v))
	}
	primary := f.Variants[0]
	suite.Tests = append(suite.Tests,
		fetchDetailsTest(f, primary),
		commitScriptTest(f, primary),
		commitRejectsUnknownIDTest(f, primary),
		deleteTest(f, primary),
	)
	return suite
}

func newTestCase(f Fixture, v Variant, id, name, description string) framework.TestCase {
	return framework.TestCase{
		ID:          id,
		Name:        name,
		Description: description,
		ModuleType:  f.ModuleType,
		Variant:     v.Name,
		Tags:        []string{string(f.ModuleType), v.Name},
	}
}

func createTest(f Fixture, v Variant) framework.TestCase {
	t := newTestCase(f, v, "create-"+v.Name,
		fmt.Sprintf("Create %s (%s)", f.Name, v.Name),
		"Creating a module returns its new id and keeps its name")
	t.Run = func(ctx context.Context, tc *framework.TestContext) error {
		name := UniqueModuleName(fmt.Sprintf("lmtests_%s_%s", f.ModuleType, v.Name))
		id, data, err := CreateModule(ctx, tc, f.ModuleType, f.Build(v, name))
		if err != nil {
			return err
		}
		if err := assertion.Greater(id, 0, "expected a positive module id, got %d", id); err != nil {
			return err
		}
		return assertion.PropertyEquals(data, "name", ldvalue.String(name))
	}
	return t
}

func fetchDetailsTest(f Fixture, v Variant) framework.TestCase {
	t := newTestCase(f, v, "fetch-details",
		fmt.Sprintf("Fetch %s details", f.Name),
		"A fetched module matches what was created")
	var module ldvalue.Value
	var id int
	t.Setup = func(ctx context.Context, tc *framework.TestContext) error {
		module = f.Build(v, UniqueModuleName(fmt.Sprintf("lmtests_%s_fetch", f.ModuleType)))
		var err error
		id, _, err = CreateModule(ctx, tc, f.ModuleType, module)
		return err
	}
	t.Run = func(ctx context.Context, tc *framework.TestContext) error {
		fetched, err := FetchModule(ctx, tc, f.ModuleType, id)
		if err != nil {
			return err
		}
		if err := assertion.Equal(fetched.GetByKey("id").IntValue(), id, "fetched module has the wrong id"); err != nil {
			return err
		}
		for _, key := range f.CompareKeys {
			if err := assertion.PropertyEquals(fetched, key, module.GetByKey(key)); err != nil {
				return err
			}
		}
		return assertion.StringContains(f.ScriptOf(fetched, v), firstLine(f.ScriptOf(module, v)),
			"fetched module does not have the script it was created with")
	}
	return t
}

func commitScriptTest(f Fixture, v Variant) framework.TestCase {
	t := newTestCase(f, v, "commit-script",
		fmt.Sprintf("Commit %s script change", f.Name),
		"A committed script change is visible when the module is fetched again")
	var id int
	t.Setup = func(ctx context.Context, tc *framework.TestContext) error {
		var err error
		id, _, err = CreateModule(ctx, tc, f.ModuleType,
			f.Build(v, UniqueModuleName(fmt.Sprintf("lmtests_%s_commit", f.ModuleType))))
		return err
	}
	t.Run = func(ctx context.Context, tc *framework.TestContext) error {
		marker := UniqueModuleName("lmtests_marker")
		script := scriptWithMarker(v, marker)
		if _, err := CommitModule(ctx, tc, f.ModuleType, id, f.ScriptChange(v, script)); err != nil {
			return err
		}
		fetched, err := FetchModule(ctx, tc, f.ModuleType, id)
		if err != nil {
			return err
		}
		return assertion.StringContains(f.ScriptOf(fetched, v), marker, "committed script was not saved")
	}
	return t
}

func commitRejectsUnknownIDTest(f Fixture, v Variant) framework.TestCase {
	t := newTestCase(f, v, "commit-rejects-unknown-id",
		fmt.Sprintf("Commit to unknown %s is rejected", f.Name),
		"Committing to a module id that does not exist fails with an error message")
	t.Run = func(ctx context.Context, tc *framework.TestContext) error {
		resp, err := tc.SendMessage(ctx, servicedef.CommitModuleMessage(tc.PortalID, f.ModuleType, 0,
			f.ScriptChange(v, scriptWithMarker(v, "unknown"))))
		if err != nil {
			return err
		}
		if err := assertion.False(resp.OK, "commit to module id 0 should have failed"); err != nil {
			return err
		}
		return assertion.NotEqual(resp.Error, "", "a rejected commit should say why")
	}
	return t
}

func deleteTest(f Fixture, v Variant) framework.TestCase {
	t := newTestCase(f, v, "delete",
		fmt.Sprintf("Delete %s", f.Name),
		"A deleted module can no longer be fetched")
	t.Run = func(ctx context.Context, tc *framework.TestContext) error {
		id, _, err := CreateModule(ctx, tc, f.ModuleType,
			f.Build(v, UniqueModuleName(fmt.Sprintf("lmtests_%s_delete", f.ModuleType))))
		if err != nil {
			return err
		}
		if err := DeleteModule(ctx, tc, f.ModuleType, id); err != nil {
			return err
		}
		if err := assertion.NotContains(tc.CreatedModules(f.ModuleType), id); err != nil {
			return err
		}
		return assertion.WaitFor(ctx, func(ctx context.Context) (bool, error) {
			resp, err := tc.SendMessage(ctx, servicedef.FetchModuleMessage(tc.PortalID, f.ModuleType, id))
			if err != nil {
				return false, err
			}
			return !resp.OK, nil
		}, deleteWaitTimeout, 0, "%s %d could still be fetched after it was deleted", f.ModuleType, id)
	}
	return t
}

func scriptWithMarker(v Variant, marker string) string {
	if v.Name == "powershell" {
		return fmt.Sprintf("Write-Host \"%s\"\nexit 0\n", marker)
	}
	return fmt.Sprintf("println \"%s\"\nreturn 0\n", marker)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
