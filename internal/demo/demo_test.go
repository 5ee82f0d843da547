package demo

import (
	"testing"
	"time"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/timeline"
)

func TestRoster_ReferenceOrder(t *testing.T) {
	expected := []string{
		AgentMaster, AgentIQVIA, AgentPatent, AgentTrials,
		AgentExim, AgentInternal, AgentWeb, AgentReport,
	}
	names := Names(Roster())
	if len(names) != len(expected) {
		t.Fatalf("roster has %d agents, want %d", len(names), len(expected))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("agent %d = %q, want %q", i, names[i], expected[i])
		}
	}
}

func TestReferenceSchedule_IsValid(t *testing.T) {
	agents := Roster()
	sched := ReferenceSchedule(agents)

	if err := sched.Validate(len(agents)); err != nil {
		t.Fatalf("reference schedule invalid: %v", err)
	}
	if sched.Begin != 300*time.Millisecond {
		t.Errorf("Begin = %v, want 300ms", sched.Begin)
	}
	if sched.Steps[0].Message != "Query decomposed into 6 research tasks" {
		t.Errorf("master completion message = %q", sched.Steps[0].Message)
	}
	if sched.Total() != 11*time.Second {
		t.Errorf("Total = %v, want 11s", sched.Total())
	}
}

func TestIndexOf(t *testing.T) {
	agents := Roster()
	if got := IndexOf(agents, AgentTrials); got != 3 {
		t.Errorf("IndexOf(trials) = %d, want 3", got)
	}
	if got := IndexOf(agents, "Nobody"); got != -1 {
		t.Errorf("IndexOf(unknown) = %d, want -1", got)
	}
}

func TestTopicsFor_DefaultCatalog(t *testing.T) {
	topics := TopicsFor(Roster(), insight.Default())
	want := insight.DefaultTopics()
	if len(topics) != len(want) {
		t.Fatalf("got %d topics, want %d", len(topics), len(want))
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("topic %d = %+v, want %+v", i, topics[i], want[i])
		}
	}
}

func TestTopicsFor_SkipsMissingTopics(t *testing.T) {
	repo := insight.NewStaticRepository(
		[]insight.Topic{{Key: insight.TopicWeb, Title: "Web"}},
		map[string]insight.Payload{insight.TopicWeb: {Summary: "s"}},
	)
	topics := TopicsFor(Roster(), repo)
	if len(topics) != 1 || topics[0].Key != insight.TopicWeb {
		t.Errorf("unexpected topics: %+v", topics)
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{"quick", PresetQuick, false},
		{" Normal ", PresetNormal, false},
		{"SLOW", PresetSlow, false},
		{"medium", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePreset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePreset(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePreset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewPipeline_Defaults(t *testing.T) {
	p, err := NewPipeline(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Names) != 8 {
		t.Errorf("expected 8 names, got %d", len(p.Names))
	}
	if p.Policy != timeline.PolicyContinue {
		t.Errorf("Policy = %q, want continue", p.Policy)
	}
	if p.Schedule.Total() != 11*time.Second {
		t.Errorf("Total = %v, want 11s", p.Schedule.Total())
	}
}

func TestNewPipeline_PresetScaling(t *testing.T) {
	tests := []struct {
		preset Preset
		total  time.Duration
	}{
		{PresetQuick, 1100 * time.Millisecond},
		{PresetNormal, 11 * time.Second},
		{PresetSlow, 22 * time.Second},
	}
	for _, tt := range tests {
		p, err := NewPipeline(Config{Preset: tt.preset})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.preset, err)
		}
		if p.Schedule.Total() != tt.total {
			t.Errorf("%s: Total = %v, want %v", tt.preset, p.Schedule.Total(), tt.total)
		}
	}
}

func TestNewPipeline_PolicyOverride(t *testing.T) {
	p, err := NewPipeline(Config{Scenario: ScenarioFail, Policy: timeline.PolicyContinue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Policy != timeline.PolicyContinue {
		t.Errorf("Policy = %q, want explicit continue", p.Policy)
	}
}

func TestNewPipeline_UnknownScenario(t *testing.T) {
	if _, err := NewPipeline(Config{Scenario: "chaos"}); err == nil {
		t.Error("expected error for unknown scenario")
	}
}
