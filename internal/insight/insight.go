// Package insight serves the static insight payloads shown once a run completes.
package insight

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrUnknownTopic is returned when a repository has no payload for a topic key.
var ErrUnknownTopic = errors.New("unknown topic")

// Payload is the structured content associated with one topic key.
type Payload struct {
	Summary    string      `yaml:"summary" json:"summary"`
	Insights   []string    `yaml:"insights" json:"insights"`
	Table      *Table      `yaml:"table,omitempty" json:"table,omitempty"`
	References []Reference `yaml:"references,omitempty" json:"references,omitempty"`
}

// Table is an optional grid of data attached to a payload.
type Table struct {
	Headers []string   `yaml:"headers" json:"headers"`
	Rows    [][]string `yaml:"rows" json:"rows"`
}

// Reference is a cited source.
type Reference struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// Topic names a payload key and the card title it is shown under.
type Topic struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
}

// Repository looks up payloads by topic key.
type Repository interface {
	Lookup(ctx context.Context, topic string) (Payload, error)
	Topics() []Topic
}

// Card is a fetched payload paired with its topic.
type Card struct {
	Topic   Topic
	Payload Payload
}

// FetchAll looks up every topic concurrently and returns the cards in topic
// order. The first lookup error cancels the rest and is returned.
func FetchAll(ctx context.Context, repo Repository, topics []Topic) ([]Card, error) {
	cards := make([]Card, len(topics))
	g, gctx := errgroup.WithContext(ctx)

	for i, topic := range topics {
		g.Go(func() error {
			payload, err := repo.Lookup(gctx, topic.Key)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", topic.Key, err)
			}
			cards[i] = Card{Topic: topic, Payload: payload}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}
