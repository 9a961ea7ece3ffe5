package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	"github.com/pkg/errors"
)

const statusPollInterval = 100 * time.Millisecond

// Status is what the portal bridge reports about the session it is connected to.
type Status struct {
	PortalID    string                  `json:"portalId"`
	Label       string                  `json:"label"`
	Description string                  `json:"description"`
	ModuleTypes []servicedef.ModuleType `json:"moduleTypes"`
}

// SupportsModuleType returns true if the bridge accepts the module type. A bridge that
// lists no types is assumed to accept all of them.
func (s Status) SupportsModuleType(t servicedef.ModuleType) bool {
	if len(s.ModuleTypes) == 0 {
		return true
	}
	for _, m := range s.ModuleTypes {
		if m == t {
			return true
		}
	}
	return false
}

// QueryStatus polls the bridge's root resource until it answers or the timeout elapses.
// Progress dots are written to output.
func (c *Client) QueryStatus(ctx context.Context, timeout time.Duration, output io.Writer) (Status, error) {
	fmt.Fprintf(output, "Connecting to portal bridge at %s", c.baseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			return Status{}, err
		}
		resp, err := c.http.HTTPClient.Do(req)
		if err == nil {
			fmt.Fprintln(output)
			return readStatus(resp, output)
		}
		if ctx.Err() != nil {
			fmt.Fprintln(output)
			return Status{}, ctx.Err()
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return Status{}, errors.Wrap(err, "timed out, result of last query was")
		}
		select {
		case <-ctx.Done():
		case <-time.After(statusPollInterval):
		}
	}
}

func readStatus(resp *http.Response, output io.Writer) (Status, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Status{}, errors.Errorf("portal bridge returned status code %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, err
	}
	if len(data) == 0 {
		fmt.Fprintf(output, "Status query successful, but bridge provided no metadata\n")
		return Status{}, nil
	}
	fmt.Fprintf(output, "Status query returned metadata: %s\n", string(data))
	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return Status{}, errors.Errorf("malformed status response from portal bridge: %s", string(data))
	}
	return status, nil
}
