package framework

import (
	"context"
	"fmt"

	"github.com/logicmonitor/lm-module-tests/servicedef"
)

// CleanupModules deletes every module in the context's cleanup registry, in registration
// order, and empties the registry. A failed deletion is recorded and the pass carries on, so
// every registered module is attempted exactly once. It returns true only if every
// deletion succeeded.
//
// Deletions are not affected by cancellation of ctx: an aborted run still removes what it
// created.
func CleanupModules(ctx context.Context, tc *TestContext) (bool, []string) {
	ctx = context.WithoutCancel(ctx)
	refs := tc.takePendingCleanup()
	if len(refs) == 0 {
		tc.Log("no modules to clean up")
		return true, nil
	}
	tc.Log("cleaning up %d module(s)", len(refs))

	var errs []string
	for _, ref := range refs {
		resp, err := tc.deliver(ctx, servicedef.DeleteModuleMessage(tc.PortalID, ref.Type, ref.ID))
		var message string
		switch {
		case err != nil:
			message = fmt.Sprintf("Error deleting %s %d: %s", ref.Type, ref.ID, err)
		case !resp.OK:
			message = fmt.Sprintf("Failed to delete %s %d: %s", ref.Type, ref.ID, resp.Error)
		default:
			tc.Log("deleted %s", ref)
			continue
		}
		tc.Log("%s", message)
		errs = append(errs, message)
	}
	return len(errs) == 0, errs
}
