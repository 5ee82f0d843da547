package demo

import (
	"fmt"
	"strings"

	"github.com/boss6825/pharmintel/internal/timeline"
)

// Preset controls playback pacing by scaling the reference schedule.
type Preset string

const (
	PresetQuick  Preset = "quick"
	PresetNormal Preset = "normal"
	PresetSlow   Preset = "slow"
)

func ParsePreset(value string) (Preset, error) {
	switch Preset(strings.ToLower(strings.TrimSpace(value))) {
	case PresetQuick, PresetNormal, PresetSlow:
		return Preset(strings.ToLower(strings.TrimSpace(value))), nil
	default:
		return "", fmt.Errorf("invalid demo preset %q (valid: quick, normal, slow)", value)
	}
}

// Factor returns the multiplier applied to reference offsets.
func (p Preset) Factor() float64 {
	switch p {
	case PresetQuick:
		return 0.1
	case PresetSlow:
		return 2
	default:
		return 1
	}
}

// Config selects how a demo pipeline is built.
type Config struct {
	Preset   Preset
	Scenario Scenario
	Policy   timeline.FailurePolicy // overrides the scenario's policy when set
	Script   string                 // Lua schedule script; replaces the reference schedule
}

// Pipeline is everything the sequencer needs for one run.
type Pipeline struct {
	Agents   []Agent
	Names    []string
	Schedule timeline.Schedule
	Policy   timeline.FailurePolicy
}

// NewPipeline builds the roster, schedule and failure policy for a config.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Preset == "" {
		cfg.Preset = PresetNormal
	}
	if cfg.Scenario == "" {
		cfg.Scenario = ScenarioSuccess
	}

	agents := Roster()
	names := Names(agents)

	sched := ReferenceSchedule(agents)
	if cfg.Script != "" {
		scripted, err := LoadScript(cfg.Script, names)
		if err != nil {
			return nil, err
		}
		sched = scripted
	}

	sched, policy, err := ApplyScenario(sched, agents, cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if cfg.Policy != "" {
		policy = cfg.Policy
	}

	sched = sched.Scale(cfg.Preset.Factor())
	if err := sched.Validate(len(names)); err != nil {
		return nil, err
	}

	return &Pipeline{
		Agents:   agents,
		Names:    names,
		Schedule: sched,
		Policy:   policy,
	}, nil
}
