package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// callPolicy bounds a completion call and governs its single retry.
type callPolicy struct {
	timeout time.Duration
	backoff time.Duration
}

func newCallPolicy(engine domain.EngineSettings) callPolicy {
	backoff := engine.RetryBackoff
	if backoff < 0 {
		backoff = 0
	}
	return callPolicy{timeout: engine.ClampedCallTimeout(), backoff: backoff}
}

// complete calls svc once and, when retryable reports true for the
// failure, once more after the backoff. Errors always wrap
// domain.ErrRateLimited or domain.ErrCompletionUnavailable.
func (p callPolicy) complete(
	ctx context.Context,
	svc driven.CompletionService,
	prompt string,
	opts driven.CompletionOptions,
	retryable func(error) bool,
) (string, error) {
	if svc == nil {
		return "", fmt.Errorf("%w: no completion provider configured", domain.ErrCompletionUnavailable)
	}

	out, err := p.once(ctx, svc, prompt, opts)
	if err == nil || ctx.Err() != nil || !retryable(err) {
		return out, err
	}

	logger.Debug("Completion failed (%v); retrying in %s", err, p.backoff)
	timer := time.NewTimer(p.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", err
	case <-timer.C:
	}
	return p.once(ctx, svc, prompt, opts)
}

func (p callPolicy) once(
	ctx context.Context, svc driven.CompletionService, prompt string, opts driven.CompletionOptions,
) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := svc.Complete(callCtx, prompt, opts)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrCompletionUnavailable) {
		return "", err
	}
	return "", fmt.Errorf("%w: %v", domain.ErrCompletionUnavailable, err)
}

func retryAlways(error) bool { return true }

func retryRateLimited(err error) bool { return errors.Is(err, domain.ErrRateLimited) }

// extractJSON returns the first complete JSON object or array in s.
// Markdown fences and surrounding prose are skipped. Each outermost
// bracket span is validated, then its direct children, so s is only
// walked a bounded number of times.
func extractJSON(s string) (json.RawMessage, bool) {
	spans := bracketSpans(s)
	outerEnd := -1
	for i, sp := range spans {
		if sp.start < outerEnd {
			continue
		}
		outerEnd = sp.end
		if raw := s[sp.start:sp.end]; json.Valid([]byte(raw)) {
			return json.RawMessage(raw), true
		}
		for _, child := range spans[i+1:] {
			if child.start >= sp.end {
				break
			}
			if child.depth != sp.depth+1 {
				continue
			}
			if raw := s[child.start:child.end]; json.Valid([]byte(raw)) {
				return json.RawMessage(raw), true
			}
		}
	}
	return nil, false
}

type bracketSpan struct {
	start, end int
	depth      int
}

// bracketSpans matches brackets in one pass, skipping those inside quoted
// strings, and returns the balanced spans ordered by start. A mismatched
// closer abandons every bracket still open.
func bracketSpans(s string) []bracketSpan {
	var (
		spans   []bracketSpan
		open    []int
		inStr   bool
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}

		switch c {
		case '"':
			inStr = len(open) > 0
		case '{', '[':
			open = append(open, i)
		case '}', ']':
			if len(open) == 0 {
				continue
			}
			want := byte('{')
			if c == ']' {
				want = '['
			}
			top := open[len(open)-1]
			if s[top] != want {
				open = open[:0]
				continue
			}
			open = open[:len(open)-1]
			spans = append(spans, bracketSpan{start: top, end: i + 1, depth: len(open)})
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	return spans
}

var (
	asteriskRun   = regexp.MustCompile(`\*+`)
	underlineBold = regexp.MustCompile(`__([^_]+)__`)
	blankLines    = regexp.MustCompile(`\n\s*\n\s*\n`)
	inlineSpace   = regexp.MustCompile(`[ \t]+`)
)

// cleanModelText removes markdown emphasis that models add despite being
// asked not to, and tidies whitespace.
func cleanModelText(s string) string {
	s = asteriskRun.ReplaceAllString(s, "")
	s = underlineBold.ReplaceAllString(s, "$1")
	s = blankLines.ReplaceAllString(s, "\n\n")
	s = inlineSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
