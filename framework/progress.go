package framework

// Phase is the stage of a suite run reported in a ProgressEvent.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseRunning  Phase = "running"
	PhaseCleanup  Phase = "cleanup"
	PhaseComplete Phase = "complete"
)

// ProgressEvent is a snapshot of a suite run. CurrentTest is set while a test is starting
// or has just finished; CurrentTestStatus only once it has finished.
type ProgressEvent struct {
	SuiteID           string     `json:"suiteId"`
	Phase             Phase      `json:"phase"`
	TotalTests        int        `json:"totalTests"`
	CompletedTests    int        `json:"completedTests"`
	CurrentTest       string     `json:"currentTest,omitempty"`
	CurrentTestStatus TestStatus `json:"currentTestStatus,omitempty"`
}

// Observer receives progress and per-test results while a run is in progress. Calls are made
// synchronously, in execution order, from the goroutine running the suites.
type Observer interface {
	Progress(event ProgressEvent)
	TestCompleted(result TestResult)
}

type nullObserver struct{}

func (nullObserver) Progress(ProgressEvent)   {}
func (nullObserver) TestCompleted(TestResult) {}

func NullObserver() Observer { return nullObserver{} }

// ObserverFuncs adapts plain callbacks to Observer. Either field may be nil.
type ObserverFuncs struct {
	OnProgress      func(ProgressEvent)
	OnTestCompleted func(TestResult)
}

func (o ObserverFuncs) Progress(event ProgressEvent) {
	if o.OnProgress != nil {
		o.OnProgress(event)
	}
}

func (o ObserverFuncs) TestCompleted(result TestResult) {
	if o.OnTestCompleted != nil {
		o.OnTestCompleted(result)
	}
}

// MultiObserver forwards every call to each of its observers in order.
type MultiObserver []Observer

func (m MultiObserver) Progress(event ProgressEvent) {
	for _, o := range m {
		o.Progress(event)
	}
}

func (m MultiObserver) TestCompleted(result TestResult) {
	for _, o := range m {
		o.TestCompleted(result)
	}
}
