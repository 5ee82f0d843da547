// Package report assembles the intelligence report for a finished run and
// exports it as PDF, markdown or JSON.
package report

import (
	"strings"
	"time"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/timeline"
)

const (
	DefaultTitle    = "Respiratory Drug Repurposing Opportunity Analysis"
	DefaultMolecule = "Montelukast + Budesonide Combination"
	DefaultQuery    = "Find molecules for respiratory diseases with low competition and high patient burden in India"
)

// Metric is a headline figure shown at the top of a section.
type Metric struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Section is one insight card rendered as a report chapter.
type Section struct {
	Key        string              `json:"key"`
	Title      string              `json:"title"`
	Summary    string              `json:"summary"`
	Metrics    []Metric            `json:"metrics,omitempty"`
	Insights   []string            `json:"insights,omitempty"`
	Table      *insight.Table      `json:"table,omitempty"`
	References []insight.Reference `json:"references,omitempty"`
}

// Strategy is a numbered strategic recommendation.
type Strategy struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Report struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Molecule       string           `json:"molecule"`
	Query          string           `json:"query"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Summary        []string         `json:"summary"`
	Recommendation string           `json:"recommendation"`
	Sections       []Section        `json:"sections"`
	Strategies     []Strategy       `json:"strategies"`
	Timeline       []timeline.Entry `json:"timeline"`
	Footer         []string         `json:"footer"`
}

var executiveSummary = []string{
	"Our agentic AI analysis has identified a high-potential drug repurposing opportunity " +
		"in the respiratory therapeutic space, specifically targeting chronic obstructive pulmonary " +
		"disease (COPD) and severe asthma indications with combination therapy approaches.",
	"The market opportunity is substantial, with the Indian respiratory market valued at " +
		"$2.4B and growing at 8.2% CAGR. Patent landscape analysis reveals clear freedom-to-operate " +
		"windows opening in Q2 2025, and clinical trial data supports efficacy in target populations.",
}

const keyRecommendation = "Pursue 505(b)(2) pathway for novel fixed-dose combination with differentiated " +
	"delivery mechanism. Estimated development timeline: 18-24 months."

var strategies = []Strategy{
	{
		Title: "Product Development Strategy",
		Body: "Pursue 505(b)(2) regulatory pathway for fixed-dose combination. Target differentiation " +
			"through novel delivery mechanism and patient-centric formulation improvements.",
	},
	{
		Title: "Market Entry Timing",
		Body: "Launch aligned with Q2 2025 patent expiries. Secure manufacturing partnerships " +
			"for API supply chain resilience given 68% import dependency.",
	},
	{
		Title: "Clinical Evidence Generation",
		Body: "Conduct India-specific bridging studies focusing on tropical asthma phenotypes. " +
			"Leverage real-world evidence to support payer value proposition.",
	},
}

// Section titles differ from card titles for the topics the report leads with.
var sectionTitles = map[string]string{
	insight.TopicMarket: "Market Intelligence",
	insight.TopicPatent: "Patent Landscape & IP Strategy",
	insight.TopicTrials: "Clinical Development Pipeline",
	insight.TopicExim:   "Trade & Manufacturing Analysis",
}

var sectionMetrics = map[string][]Metric{
	insight.TopicMarket: {
		{Value: "$2.4B", Label: "Current Market Size"},
		{Value: "8.2%", Label: "Market CAGR"},
	},
}

// Build assembles a report from the fetched cards and the run's final
// timeline. An empty query falls back to the reference query.
func Build(id, query string, cards []insight.Card, entries []timeline.Entry, now time.Time) *Report {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultQuery
	}

	r := &Report{
		ID:             id,
		Title:          DefaultTitle,
		Molecule:       DefaultMolecule,
		Query:          query,
		GeneratedAt:    now,
		Summary:        append([]string(nil), executiveSummary...),
		Recommendation: keyRecommendation,
		Strategies:     append([]Strategy(nil), strategies...),
		Timeline:       append([]timeline.Entry(nil), entries...),
		Footer: []string{
			"This report was generated by Agentic Pharma Intelligence Platform",
			"Confidential & Proprietary - For Internal Use Only",
		},
	}

	for _, card := range cards {
		title := card.Topic.Title
		if t, ok := sectionTitles[card.Topic.Key]; ok {
			title = t
		}
		r.Sections = append(r.Sections, Section{
			Key:        card.Topic.Key,
			Title:      title,
			Summary:    card.Payload.Summary,
			Metrics:    sectionMetrics[card.Topic.Key],
			Insights:   card.Payload.Insights,
			Table:      card.Payload.Table,
			References: card.Payload.References,
		})
	}

	return r
}

// GeneratedDate formats the generation date the way the report header shows it.
func (r *Report) GeneratedDate() string {
	return r.GeneratedAt.Format("January 2, 2006")
}

// Heading is the report banner, e.g. "INTELLIGENCE REPORT #3".
func (r *Report) Heading() string {
	return "INTELLIGENCE REPORT #" + r.ID
}
