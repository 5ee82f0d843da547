package insight

import (
	"context"
	"fmt"
)

// Topic keys of the built-in catalog.
const (
	TopicMarket   = "market"
	TopicPatent   = "patent"
	TopicTrials   = "trials"
	TopicExim     = "exim"
	TopicInternal = "internal"
	TopicWeb      = "web"
)

// DefaultTopics lists the built-in topics in display order.
func DefaultTopics() []Topic {
	return []Topic{
		{Key: TopicMarket, Title: "Market Intelligence"},
		{Key: TopicPatent, Title: "Patent Landscape"},
		{Key: TopicTrials, Title: "Clinical Trials Pipeline"},
		{Key: TopicExim, Title: "Trade & Manufacturing"},
		{Key: TopicInternal, Title: "Internal Strategy Insights"},
		{Key: TopicWeb, Title: "Web Intelligence"},
	}
}

// StaticRepository serves a fixed in-memory catalog.
type StaticRepository struct {
	topics   []Topic
	payloads map[string]Payload
}

// NewStaticRepository creates a repository over the given topics and payloads.
func NewStaticRepository(topics []Topic, payloads map[string]Payload) *StaticRepository {
	return &StaticRepository{topics: topics, payloads: payloads}
}

// Default returns the built-in mock catalog.
func Default() *StaticRepository {
	return NewStaticRepository(DefaultTopics(), defaultPayloads())
}

// Lookup implements Repository.
func (r *StaticRepository) Lookup(ctx context.Context, topic string) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	p, ok := r.payloads[topic]
	if !ok {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	return p, nil
}

// Topics implements Repository.
func (r *StaticRepository) Topics() []Topic {
	out := make([]Topic, len(r.topics))
	copy(out, r.topics)
	return out
}

func defaultPayloads() map[string]Payload {
	return map[string]Payload{
		TopicMarket: {
			Summary: "The respiratory therapeutics market in India shows significant growth potential with a CAGR of 8.2%. Key therapeutic areas including COPD, asthma, and allergic rhinitis demonstrate low competition density with high unmet medical needs.",
			Insights: []string{
				"Market size: $2.4B (2024) projected to reach $3.8B by 2028",
				"Generic penetration: 67% in oral formulations, 43% in inhalables",
				"Top 3 players control 52% market share, indicating consolidation opportunity",
				"Pediatric respiratory segment shows 12% CAGR, fastest growing sub-segment",
			},
			Table: &Table{
				Headers: []string{"Therapeutic Area", "Market Size ($M)", "CAGR %", "Competition Index"},
				Rows: [][]string{
					{"COPD", "890", "7.8", "Medium"},
					{"Asthma", "1,240", "9.1", "High"},
					{"Allergic Rhinitis", "270", "11.2", "Low"},
				},
			},
		},
		TopicPatent: {
			Summary: "Patent landscape analysis reveals 23 active patents expiring between 2025-2027 for key respiratory molecules. Freedom-to-operate assessment indicates 4 high-potential molecules with clear IP pathways.",
			Insights: []string{
				"Budesonide patents expire Q2 2025, enabling novel delivery system innovations",
				"Montelukast composition patents expire in 18 months across US, EU, India",
				"12 process patents identified as circumventable for target molecules",
				"Zero litigation history for 3 priority molecules in past 5 years",
			},
			Table: &Table{
				Headers: []string{"Molecule", "Expiry Date", "Patent Type", "FTO Status"},
				Rows: [][]string{
					{"Budesonide", "May 2025", "Composition", "Clear"},
					{"Montelukast", "Nov 2025", "Formulation", "Clear"},
					{"Ciclesonide", "Mar 2026", "Process", "Under Review"},
				},
			},
			References: []Reference{
				{Title: "USPTO Patent Database", URL: "#"},
				{Title: "EPO Register", URL: "#"},
			},
		},
		TopicTrials: {
			Summary: "Current clinical trial landscape shows 47 active trials for respiratory indications in Phase II-III. Notable trend: 8 trials exploring anti-inflammatory repurposing for COPD exacerbations.",
			Insights: []string{
				"32% of trials focus on novel drug delivery mechanisms vs. new molecules",
				"Top sponsor: AstraZeneca (9 trials), GSK (7 trials), Local: Sun Pharma (3 trials)",
				"India-specific trials: 12 active, focusing on tropical asthma phenotypes",
				"Orphan respiratory indications: 6 trials, all in early Phase II",
			},
			Table: &Table{
				Headers: []string{"Trial ID", "Molecule", "Indication", "Phase", "Sponsor"},
				Rows: [][]string{
					{"NCT05234512", "Montelukast", "COPD", "III", "Sun Pharma"},
					{"NCT05198734", "Budesonide", "Severe Asthma", "II", "Cipla"},
					{"NCT05112456", "Novel Combo", "Allergic Rhinitis", "II", "Dr. Reddy's"},
				},
			},
			References: []Reference{
				{Title: "ClinicalTrials.gov", URL: "https://clinicaltrials.gov"},
				{Title: "WHO ICTRP", URL: "#"},
			},
		},
		TopicExim: {
			Summary: "India's API import dependency for respiratory molecules remains at 68%, primarily from China. Export opportunities identified in finished dosage forms to regulated markets.",
			Insights: []string{
				"Import volume: 12,400 MT (2023), up 15% YoY",
				"Top import sources: China (72%), Italy (18%), Switzerland (7%)",
				"Export growth: 23% in inhalation devices, driven by US DMF approvals",
				"Domestic manufacturing initiatives target 40% import substitution by 2026",
			},
			Table: &Table{
				Headers: []string{"API/Product", "Import (MT)", "Export (MT)", "Net Position"},
				Rows: [][]string{
					{"Montelukast API", "1,240", "180", "Import Heavy"},
					{"Budesonide FDF", "420", "890", "Export Heavy"},
					{"Inhalers (Units M)", "2.1", "8.4", "Export Heavy"},
				},
			},
		},
		TopicInternal: {
			Summary: "Internal strategy documents indicate focus on respiratory portfolio expansion with emphasis on differentiated generics and 505(b)(2) pathways. Field feedback highlights pricing pressure in tier-2 cities.",
			Insights: []string{
				"Strategic priority: Move from commodity generics to value-added formulations",
				"R&D investment: 12% of respiratory division revenue allocated to reformulation",
				"Market intelligence: Competitors planning 6 respiratory launches in next 18 months",
				"Sales feedback: 34% of prescribers open to branded generics with clinical support",
			},
			References: []Reference{
				{Title: "Internal Strategy Deck Q4-2024", URL: "#"},
				{Title: "Field Insights Report - Respiratory", URL: "#"},
			},
		},
		TopicWeb: {
			Summary: "Recent scientific publications and clinical guidelines emphasize personalized medicine approaches in respiratory care. GINA guidelines updated with new biomarker-driven treatment algorithms.",
			Insights: []string{
				"15 peer-reviewed papers published on respiratory repurposing in past 6 months",
				"Patient forums indicate high demand for affordable combination inhalers",
				"Regulatory news: FDA draft guidance on nasal spray bioequivalence (Oct 2024)",
				"Payer policies shifting toward value-based contracting for chronic respiratory",
			},
			References: []Reference{
				{Title: "GINA 2024 Guidelines Update", URL: "#"},
				{Title: "Nature Reviews Drug Discovery", URL: "#"},
				{Title: "Patient Forum Analysis", URL: "#"},
			},
		},
	}
}
