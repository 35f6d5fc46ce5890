// Package probe checks whether an audited site exists before an audit is generated.
package probe

import (
	"context"
	"errors"
)

// Outcome is the verdict of an existence probe
type Outcome int

const (
	// Inconclusive means the probe could not decide, e.g. a network failure.
	Inconclusive Outcome = iota
	Reachable
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "inconclusive"
	}
}

// Prober reports whether the site behind rawURL exists. The returned error
// explains an Unreachable or Inconclusive outcome and is nil otherwise.
type Prober interface {
	Probe(ctx context.Context, rawURL string) (Outcome, error)
}

// Noop treats every site as reachable
type Noop struct{}

func (Noop) Probe(context.Context, string) (Outcome, error) { return Reachable, nil }

// Chain runs probers in order. The first Unreachable verdict wins; otherwise
// the chain is Reachable if any prober was.
type Chain []Prober

func (c Chain) Probe(ctx context.Context, rawURL string) (Outcome, error) {
	result := Inconclusive
	var errs []error
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return Inconclusive, err
		}
		outcome, err := p.Probe(ctx, rawURL)
		switch outcome {
		case Unreachable:
			return Unreachable, err
		case Reachable:
			result = Reachable
		default:
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	if result == Reachable {
		return Reachable, nil
	}
	return Inconclusive, errors.Join(errs...)
}
