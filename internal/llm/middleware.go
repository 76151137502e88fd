package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/abhisek/certifica/internal/store"
)

// Middleware decorates a Provider.
type Middleware func(Provider) Provider

// Chain applies mw to p. The first middleware is the outermost.
func Chain(p Provider, mw ...Middleware) Provider {
	for i := len(mw) - 1; i >= 0; i-- {
		p = mw[i](p)
	}
	return p
}

// generateFunc keeps the wrapped provider's Name and ModelID and replaces
// Generate.
type generateFunc struct {
	Provider
	fn func(ctx context.Context, req Request) (*Response, error)
}

func (g generateFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return g.fn(ctx, req)
}

// Timeout bounds each Generate call, including any retries below it.
func Timeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		if d <= 0 {
			return next
		}
		return generateFunc{Provider: next, fn: func(ctx context.Context, req Request) (*Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Generate(ctx, req)
		}}
	}
}

// RetryPolicy is exponential backoff with ±20% jitter.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// DefaultRetry makes three attempts starting at one second.
var DefaultRetry = RetryPolicy{Attempts: 3, Base: time.Second, Max: 10 * time.Second}

func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	d := p.Base << attempt
	if d > p.Max || d <= 0 {
		d = p.Max
	}
	jitter := (rand.Float64()*0.4 - 0.2) * float64(d)
	return max(d+time.Duration(jitter), 0)
}

// Retry repeats failed calls. Cancellation and truncation end at once; an
// invalid reply is retried a single time.
func Retry(p RetryPolicy) Middleware {
	return func(next Provider) Provider {
		return generateFunc{Provider: next, fn: func(ctx context.Context, req Request) (*Response, error) {
			attempts := max(p.Attempts, 1)
			retriedInvalid := false
			var err error
			for attempt := range attempts {
				var resp *Response
				if resp, err = next.Generate(ctx, req); err == nil {
					return resp, nil
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				switch kind, _ := KindOf(err); kind {
				case KindTruncated:
					return nil, err
				case KindInvalidOutput:
					if retriedInvalid {
						return nil, err
					}
					retriedInvalid = true
				}
				if attempt == attempts-1 {
					break
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(p.delay(attempt, err)):
				}
			}
			return nil, err
		}}
	}
}

// Record appends every call to the LLM event log and logs it at debug
// level. A failing log write never fails the call. events may be nil.
func Record(events store.EventRepo, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Provider) Provider {
		return generateFunc{Provider: next, fn: func(ctx context.Context, req Request) (*Response, error) {
			start := time.Now()
			resp, err := next.Generate(ctx, req)
			ev := store.LLMRequestEventData{
				Provider:    next.Name(),
				Model:       next.ModelID(),
				Purpose:     PurposeFrom(ctx),
				LatencyMs:   time.Since(start).Milliseconds(),
				Success:     err == nil,
				RequestBody: transcript(req),
			}
			if resp != nil {
				if resp.Model != "" {
					ev.Model = resp.Model
				}
				ev.InputTokens = resp.InputTokens
				ev.OutputTokens = resp.OutputTokens
				ev.ResponseBody = string(resp.Content)
			}
			if err != nil {
				ev.ErrorMessage = err.Error()
			}
			logger.Debug("llm call", "provider", ev.Provider, "model", ev.Model,
				"purpose", ev.Purpose, "latency_ms", ev.LatencyMs, "ok", ev.Success)
			if events != nil {
				if werr := events.AppendLLMRequest(ctx, ev); werr != nil {
					logger.Warn("llm event not recorded", "error", werr)
				}
			}
			return resp, err
		}}
	}
}

// transcript is the stored, human-readable form of a request.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	fmt.Fprintf(&b, "[user]\n%s\n", req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "\n[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
