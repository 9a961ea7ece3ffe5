package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/logicmonitor/lm-module-tests/framework"
	"github.com/logicmonitor/lm-module-tests/logging"
	"github.com/logicmonitor/lm-module-tests/moduletests"
	"github.com/logicmonitor/lm-module-tests/portal"
	"github.com/logicmonitor/lm-module-tests/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args, os.Stderr) {
		return 1
	}

	logger, err := logging.NewLogger(params.logFormat, params.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logging configuration: %s\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	runID := uuid.NewString()
	logger = logger.With(zap.String("runId", runID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := portal.NewClient(params.portalURL,
		portal.WithRetries(params.retries),
		portal.WithLogger(logging.Printf(logger.Named("portal"))),
	)
	status, err := client.QueryStatus(ctx, params.statusTimeout, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Portal bridge error: %s\n", err)
		return 1
	}
	portalID, portalLabel := params.portalID, params.portalLabel
	if portalID == "" {
		portalID = status.PortalID
	}
	if portalLabel == "" {
		portalLabel = status.Label
	}
	if portalID == "" {
		fmt.Fprintln(os.Stderr, "The bridge did not report a portal id; use -portal")
		return 1
	}
	logger.Info("connected to portal", zap.String("portalId", portalID), zap.String("label", portalLabel))

	suites := moduletests.SuitesFor(params.moduleTypes)
	var supported []framework.TestSuite
	for _, s := range suites {
		if status.SupportsModuleType(s.ModuleType) {
			supported = append(supported, s)
		} else {
			fmt.Printf("Skipping %s: not supported by the portal bridge\n", s.ID)
		}
	}
	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)
	if params.filters.IsDefined() {
		supported = framework.ApplyFilter(supported, params.filters.AsFilter)
	}

	tc := framework.NewTestContext(portalID, portalLabel, client, logging.Printf(logger.Named("tests")))
	metrics := report.NewMetrics()
	observer := framework.MultiObserver{
		newConsoleObserver(os.Stdout, tc, params.debug, params.debugAll),
		metrics,
	}

	fmt.Printf("Running tests against %s\n", describePortal(portalID, portalLabel))
	results := framework.RunTestSuitesWithContext(ctx, tc, supported, framework.RunOptions{
		TestIDs:     params.testIDs,
		SkipCleanup: params.skipCleanup,
		Observer:    observer,
	})
	if ctx.Err() != nil {
		fmt.Println("Test run was cancelled")
	}
	for _, r := range results {
		metrics.ObserveSuite(r)
	}

	fmt.Println()
	report.PrintSummary(os.Stdout, results)

	exitCode := 0
	if params.reportPath != "" {
		r := report.Build(runID, report.Portal{ID: portalID, Label: portalLabel}, results)
		if err := report.WriteJSON(params.reportPath, r); err != nil {
			logger.Error("could not write report", zap.Error(err))
			exitCode = 1
		}
	}
	if params.metricsPath != "" {
		if err := metrics.WriteTextfile(params.metricsPath); err != nil {
			logger.Error("could not write metrics", zap.Error(err))
			exitCode = 1
		}
	}

	if cmd := report.RerunCommand(params.identityArgs(args[0]), results); cmd != "" {
		fmt.Printf("\nTo rerun the failed tests:\n  %s\n", cmd)
	}
	if code := runStatus(ctx, results); code != 0 {
		return code
	}
	return exitCode
}

// runStatus is 1 when any test failed or the run was cancelled before finishing.
func runStatus(ctx context.Context, results []framework.TestSuiteResult) int {
	if ctx.Err() != nil || !framework.Aggregate(results).OK() {
		return 1
	}
	return 0
}

func describePortal(id, label string) string {
	if label == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", label, id)
}
