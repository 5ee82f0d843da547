// Package demo defines the mock agent roster and the timer schedules that
// drive it: presets for pacing, scenarios for injected failures, and Lua
// scripts for custom timelines.
package demo

import (
	"time"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/timeline"
)

// Agent is one entry of the mock agent roster.
type Agent struct {
	Name  string
	Topic string        // insight topic this agent researches; empty for coordinators
	Done  string        // completion message
	At    time.Duration // completion offset in the reference schedule
}

// Agent names of the reference roster.
const (
	AgentMaster   = "Master Agent"
	AgentIQVIA    = "IQVIA Insights Agent"
	AgentPatent   = "Patent Landscape Agent"
	AgentTrials   = "Clinical Trials Agent"
	AgentExim     = "EXIM Trade Agent"
	AgentInternal = "Internal Insights Agent"
	AgentWeb      = "Web Intelligence Agent"
	AgentReport   = "Report Generator Agent"
)

// referenceBegin is when the master agent starts analyzing the query.
const referenceBegin = 300 * time.Millisecond

// Roster returns the reference agent roster in activation order.
func Roster() []Agent {
	return []Agent{
		{Name: AgentMaster, Done: "Query decomposed into 6 research tasks", At: 1000 * time.Millisecond},
		{Name: AgentIQVIA, Topic: insight.TopicMarket, Done: "Market analysis completed", At: 2500 * time.Millisecond},
		{Name: AgentPatent, Topic: insight.TopicPatent, Done: "IP analysis completed", At: 4000 * time.Millisecond},
		{Name: AgentTrials, Topic: insight.TopicTrials, Done: "Pipeline data retrieved", At: 5500 * time.Millisecond},
		{Name: AgentExim, Topic: insight.TopicExim, Done: "Import/export trends analyzed", At: 7000 * time.Millisecond},
		{Name: AgentInternal, Topic: insight.TopicInternal, Done: "Strategy docs summarized", At: 8500 * time.Millisecond},
		{Name: AgentWeb, Topic: insight.TopicWeb, Done: "Literature review completed", At: 10000 * time.Millisecond},
		{Name: AgentReport, Done: "Report compiled", At: 11000 * time.Millisecond},
	}
}

// Names returns the display names of agents in order.
func Names(agents []Agent) []string {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	return names
}

// IndexOf returns the roster position of the named agent, or -1.
func IndexOf(agents []Agent, name string) int {
	for i, a := range agents {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// ReferenceSchedule is the unscaled schedule of the roster.
func ReferenceSchedule(agents []Agent) timeline.Schedule {
	steps := make([]timeline.Step, len(agents))
	for i, a := range agents {
		steps[i] = timeline.Step{Task: i, Offset: a.At, Message: a.Done}
	}
	return timeline.Schedule{
		Begin:        referenceBegin,
		BeginMessage: timeline.MessageAnalyzing,
		Steps:        steps,
	}
}

// TopicsFor returns the insight topics covered by agents, in roster order,
// titled from the repository's topic list.
func TopicsFor(agents []Agent, repo insight.Repository) []insight.Topic {
	titles := make(map[string]string)
	for _, t := range repo.Topics() {
		titles[t.Key] = t.Title
	}

	var topics []insight.Topic
	for _, a := range agents {
		if a.Topic == "" {
			continue
		}
		title, ok := titles[a.Topic]
		if !ok {
			continue
		}
		topics = append(topics, insight.Topic{Key: a.Topic, Title: title})
	}
	return topics
}
