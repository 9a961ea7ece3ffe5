package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/logicmonitor/lm-module-tests/framework"
	"github.com/logicmonitor/lm-module-tests/servicedef"

	"github.com/joho/godotenv"
)

const (
	envPrefix            = "LMTESTS_"
	defaultEnvFile       = ".env"
	defaultStatusTimeout = 10 * time.Second
	defaultRetries       = 2
)

type commandParams struct {
	portalURL     string
	portalID      string
	portalLabel   string
	moduleTypes   moduleTypeList
	testIDs       stringList
	filters       framework.RegexFilters
	skipCleanup   bool
	statusTimeout time.Duration
	retries       int
	reportPath    string
	metricsPath   string
	logFormat     string
	logLevel      string
	debug         bool
	debugAll      bool
	envFile       string
}

// Read parses the command line. Every flag can also be set with an LMTESTS_ environment
// variable, which may come from a .env file; flags take precedence.
func (c *commandParams) Read(args []string, stderr io.Writer) bool {
	c.envFile = detectEnvFile(args[1:], os.Getenv(envPrefix+"ENV_FILE"))
	if err := loadEnvFile(c.envFile); err != nil {
		fmt.Fprintf(stderr, "Could not load %s: %s\n", c.envFile, err)
		return false
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.envFile, "env-file", c.envFile, "file of LMTESTS_ environment variables to load")
	fs.StringVar(&c.portalURL, "url", envOrDefault("URL", ""), "portal bridge URL")
	fs.StringVar(&c.portalID, "portal", envOrDefault("PORTAL", ""), "portal id (default: as reported by the bridge)")
	fs.StringVar(&c.portalLabel, "label", envOrDefault("LABEL", ""), "portal display label (default: as reported by the bridge)")
	fs.Var(&c.moduleTypes, "type", "module type to test (may be repeated; default: all)")
	fs.Var(&c.testIDs, "test", "test id to run in each suite (may be repeated; default: all)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.skipCleanup, "skip-cleanup", envOrDefaultBool("SKIP_CLEANUP", false), "leave created modules in the portal")
	fs.DurationVar(&c.statusTimeout, "status-timeout", envOrDefaultDuration("STATUS_TIMEOUT", defaultStatusTimeout), "how long to wait for the portal bridge to respond")
	fs.IntVar(&c.retries, "retries", envOrDefaultInt("RETRIES", defaultRetries), "retries for each portal fetch or delete request after a connection error or 5xx status")
	fs.StringVar(&c.reportPath, "report", envOrDefault("REPORT", ""), "write a JSON report to this file")
	fs.StringVar(&c.metricsPath, "metrics", envOrDefault("METRICS", ""), "write prometheus metrics to this file")
	fs.StringVar(&c.logFormat, "log-format", envOrDefault("LOG_FORMAT", "console"), "log format: console or json")
	fs.StringVar(&c.logLevel, "log-level", envOrDefault("LOG_LEVEL", "warn"), "log level: debug, info, warn or error")
	fs.BoolVar(&c.debug, "debug", envOrDefaultBool("DEBUG", false), "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", envOrDefaultBool("DEBUG_ALL", false), "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if err := c.readListsFromEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return false
	}
	if c.portalURL == "" {
		fmt.Fprintln(stderr, "-url is required")
		fs.Usage()
		return false
	}
	return true
}

func (c *commandParams) readListsFromEnv() error {
	if len(c.moduleTypes) == 0 {
		for _, s := range splitCSV(os.Getenv(envPrefix + "TYPES")) {
			if err := c.moduleTypes.Set(s); err != nil {
				return fmt.Errorf("%sTYPES: %w", envPrefix, err)
			}
		}
	}
	if len(c.testIDs) == 0 {
		c.testIDs = splitCSV(os.Getenv(envPrefix + "TESTS"))
	}
	return nil
}

// identityArgs returns the program name and the arguments that select the same portal,
// for building a command that reruns part of this run.
func (c *commandParams) identityArgs(program string) []string {
	args := []string{program, "-url", c.portalURL}
	if c.portalID != "" {
		args = append(args, "-portal", c.portalID)
	}
	if c.portalLabel != "" {
		args = append(args, "-label", c.portalLabel)
	}
	return args
}

func detectEnvFile(args []string, envValue string) string {
	path := strings.TrimSpace(envValue)
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "-env-file" || arg == "--env-file" {
			if i+1 < len(args) {
				path = strings.TrimSpace(args[i+1])
			}
			continue
		}
		if strings.HasPrefix(arg, "-env-file=") || strings.HasPrefix(arg, "--env-file=") {
			path = strings.TrimSpace(strings.SplitN(arg, "=", 2)[1])
		}
	}
	if path == "" {
		return defaultEnvFile
	}
	return path
}

// loadEnvFile loads variables that are not already set. A missing default file is not an
// error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && path == defaultEnvFile && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(envPrefix + key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback
	}
	parsed := 0
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	switch strings.ToLower(envOrDefault(key, "")) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(envOrDefault(key, ""))
	if err != nil {
		return fallback
	}
	return duration
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type moduleTypeList []servicedef.ModuleType

func (l moduleTypeList) String() string {
	var ss []string
	for _, t := range l {
		ss = append(ss, string(t))
	}
	return strings.Join(ss, ",")
}

// Set is called by the command line parser
func (l *moduleTypeList) Set(value string) error {
	t, err := servicedef.ParseModuleType(value)
	if err != nil {
		return err
	}
	*l = append(*l, t)
	return nil
}

type stringList []string

func (l stringList) String() string {
	return strings.Join(l, ",")
}

// Set is called by the command line parser
func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}
