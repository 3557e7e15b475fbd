package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mailidpwd/similarlinks/internal/domain"
)

const defaultSearchTimeout = 18 * time.Second

// OutcomeKind tags what happened to one marketplace lookup.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeEmpty
	OutcomeTimeout
	OutcomeError
)

// SearchOutcome is exactly one lookup outcome per candidate name, in the
// candidate's original position. Result is non-nil only for OutcomeSuccess.
type SearchOutcome struct {
	Kind   OutcomeKind
	Result *domain.RawSearchResult
	Err    error
}

// SearchFanout issues one independent lookup per candidate name in parallel.
// Each task runs under its own timeout; a failed or timed-out task never
// aborts its siblings. No retries happen at this layer.
type SearchFanout struct {
	client  domain.SearchClient
	timeout time.Duration
	debug   bool
}

// NewSearchFanout creates a fan-out over the given search client. The
// per-task timeout is materially longer than a generation call since
// marketplace lookups go through a rendering proxy.
func NewSearchFanout(client domain.SearchClient, timeout time.Duration, debug bool) *SearchFanout {
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &SearchFanout{client: client, timeout: timeout, debug: debug}
}

// Run looks up every candidate name concurrently and returns one outcome per
// name in original order.
func (f *SearchFanout) Run(ctx context.Context, names []string, marketplace domain.Marketplace) []SearchOutcome {
	outcomes := make([]SearchOutcome, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(idx int, candidate string) {
			defer wg.Done()
			outcomes[idx] = f.lookup(ctx, candidate, marketplace)
		}(i, name)
	}
	wg.Wait()

	if f.debug {
		for i, outcome := range outcomes {
			log.Printf("[FANOUT] %q -> kind=%d err=%v", names[i], outcome.Kind, outcome.Err)
		}
	}
	return outcomes
}

// lookup runs a single search under its own timeout, converting panics and
// errors into captured outcomes so siblings are unaffected.
func (f *SearchFanout) lookup(ctx context.Context, name string, marketplace domain.Marketplace) (outcome SearchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = SearchOutcome{Kind: OutcomeError, Err: fmt.Errorf("search panicked: %v", r)}
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.client.Search(taskCtx, name, marketplace)
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrSearchTimeout)):
		return SearchOutcome{Kind: OutcomeTimeout, Err: fmt.Errorf("%w: %v", domain.ErrSearchTimeout, err)}
	case err != nil:
		return SearchOutcome{Kind: OutcomeError, Err: err}
	case result == nil:
		return SearchOutcome{Kind: OutcomeEmpty}
	default:
		return SearchOutcome{Kind: OutcomeSuccess, Result: result}
	}
}
