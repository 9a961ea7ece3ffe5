package assertion

import (
	"fmt"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// APISucceeded fails if the portal reported an error, and otherwise returns the response
// data.
func APISucceeded(resp servicedef.Response, msgAndArgs ...interface{}) (ldvalue.Value, error) {
	if !resp.OK {
		reason := resp.Error
		if reason == "" {
			reason = "no error message"
		}
		message := fmt.Sprintf("expected API call to succeed, but it failed: %s", reason)
		if len(msgAndArgs) > 0 {
			message = messageOf(msgAndArgs, "") + ": " + reason
		}
		return ldvalue.Null(), failWithValues(message, true, resp.OK)
	}
	return resp.Data, nil
}

// ModuleCreated is APISucceeded plus a check that the data has a numeric id. It returns the
// id along with the data.
func ModuleCreated(resp servicedef.Response, msgAndArgs ...interface{}) (int, ldvalue.Value, error) {
	data, err := APISucceeded(resp, msgAndArgs...)
	if err != nil {
		return 0, data, err
	}
	id := data.GetByKey("id")
	if !id.IsNumber() {
		return 0, data, failWithValues(
			messageOf(msgAndArgs, fmt.Sprintf("expected created module to have a numeric id, got %s", id.JSONString())),
			"number", id)
	}
	return id.IntValue(), data, nil
}
