package demo

import (
	"fmt"
	"strings"

	"github.com/boss6825/pharmintel/internal/timeline"
)

// Scenario controls task outcomes during demo playback.
type Scenario string

const (
	ScenarioSuccess Scenario = "success"
	ScenarioFlaky   Scenario = "flaky"
	ScenarioFail    Scenario = "fail"
)

func ParseScenario(value string) (Scenario, error) {
	switch Scenario(strings.ToLower(strings.TrimSpace(value))) {
	case ScenarioSuccess, ScenarioFlaky, ScenarioFail:
		return Scenario(strings.ToLower(strings.TrimSpace(value))), nil
	default:
		return "", fmt.Errorf("invalid demo scenario %q (valid: success, flaky, fail)", value)
	}
}

// Failure messages injected by the scenarios.
const (
	flakyFailure = "Patent office API timed out"
	fatalFailure = "Trial registry returned no data"
)

// ApplyScenario returns a copy of sched shaped for the scenario, plus the
// failure policy the scenario implies:
//   - success: unchanged, continue
//   - flaky: the patent agent fails, the rest of the pipeline continues
//   - fail: the clinical trials agent fails and the run aborts
func ApplyScenario(sched timeline.Schedule, agents []Agent, scenario Scenario) (timeline.Schedule, timeline.FailurePolicy, error) {
	out := sched
	out.Steps = make([]timeline.Step, len(sched.Steps))
	copy(out.Steps, sched.Steps)

	var target, reason string
	policy := timeline.PolicyContinue

	switch scenario {
	case ScenarioSuccess:
		return out, policy, nil
	case ScenarioFlaky:
		target, reason = AgentPatent, flakyFailure
	case ScenarioFail:
		target, reason = AgentTrials, fatalFailure
		policy = timeline.PolicyAbort
	default:
		return timeline.Schedule{}, "", fmt.Errorf("unknown demo scenario %q", scenario)
	}

	idx := IndexOf(agents, target)
	if idx < 0 || idx >= len(out.Steps) {
		// Roster without the target agent: fail the last step instead.
		idx = len(out.Steps) - 1
	}
	if idx >= 0 {
		out.Steps[idx].Fail = reason
	}
	return out, policy, nil
}
