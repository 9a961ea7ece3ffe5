package moduletests

import (
	"context"
	"strings"

	"github.com/logicmonitor/lm-module-tests/framework"
	"github.com/logicmonitor/lm-module-tests/framework/assertion"
	"github.com/logicmonitor/lm-module-tests/servicedef"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// CreateModule creates a module in the portal and registers it for cleanup. It returns the
// new module's id and the portal's representation of it.
func CreateModule(ctx context.Context, tc *framework.TestContext, moduleType servicedef.ModuleType, module ldvalue.Value) (int, ldvalue.Value, error) {
	resp, err := tc.SendMessage(ctx, servicedef.CreateModuleMessage(tc.PortalID, moduleType, module))
	if err != nil {
		return 0, ldvalue.Null(), errors.Wrapf(err, "creating %s", moduleType)
	}
	id, data, err := assertion.ModuleCreated(resp)
	if err != nil {
		return 0, data, err
	}
	tc.RegisterModuleForCleanup(moduleType, id)
	return id, data, nil
}

func FetchModule(ctx context.Context, tc *framework.TestContext, moduleType servicedef.ModuleType, id int) (ldvalue.Value, error) {
	resp, err := tc.SendMessage(ctx, servicedef.FetchModuleMessage(tc.PortalID, moduleType, id))
	if err != nil {
		return ldvalue.Null(), errors.Wrapf(err, "fetching %s %d", moduleType, id)
	}
	return assertion.APISucceeded(resp)
}

func CommitModule(ctx context.Context, tc *framework.TestContext, moduleType servicedef.ModuleType, id int, changes ldvalue.Value) (ldvalue.Value, error) {
	resp, err := tc.SendMessage(ctx, servicedef.CommitModuleMessage(tc.PortalID, moduleType, id, changes))
	if err != nil {
		return ldvalue.Null(), errors.Wrapf(err, "committing %s %d", moduleType, id)
	}
	return assertion.APISucceeded(resp)
}

// DeleteModule deletes a module and, if that worked, removes it from the cleanup registry.
func DeleteModule(ctx context.Context, tc *framework.TestContext, moduleType servicedef.ModuleType, id int) error {
	resp, err := tc.SendMessage(ctx, servicedef.DeleteModuleMessage(tc.PortalID, moduleType, id))
	if err != nil {
		return errors.Wrapf(err, "deleting %s %d", moduleType, id)
	}
	if _, err := assertion.APISucceeded(resp); err != nil {
		return err
	}
	tc.ForgetModule(moduleType, id)
	return nil
}

// UniqueModuleName returns prefix followed by a random suffix, so that repeated or
// concurrent runs against one portal never collide.
func UniqueModuleName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
