// Package discovery drives sampling sweeps against a live API. A
// Sampler loads the published contracts, fans one goroutine out per
// endpoint and namespace pair, and funnels every request through a
// shared throttle so the target never sees more load than configured.
// Response bodies feed schema inference; inferred schemas are compared
// against the published ones as soon as both sides exist.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"

	"github.com/getdriftd/driftd/pkg/config"
	"github.com/getdriftd/driftd/pkg/diff"
	"github.com/getdriftd/driftd/pkg/httputil"
	"github.com/getdriftd/driftd/pkg/logging"
	"github.com/getdriftd/driftd/pkg/schema"
	"github.com/getdriftd/driftd/pkg/spec"
	"github.com/getdriftd/driftd/pkg/throttle"
)

// maxResultExamples caps the raw bodies kept per endpoint.
const maxResultExamples = 3

// Sampler performs discovery sweeps. Construct with New; the zero value
// is not usable.
type Sampler struct {
	cfg      *config.Config
	client   *http.Client
	limiter  *throttle.Limiter
	inferrer *schema.Inferrer
	differ   *diff.Engine
	filter   *vm.Program
	contains string
	log      *slog.Logger
}

// Option customizes a Sampler.
type Option func(*Sampler)

// WithHTTPClient replaces the default HTTP client. The caller keeps
// responsibility for its timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sampler) { s.client = client }
}

// WithLogger sets the sweep logger. Without it the sampler is silent.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sampler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEndpointFilter keeps only endpoints whose path contains the given
// substring. An empty substring keeps everything.
func WithEndpointFilter(substring string) Option {
	return func(s *Sampler) { s.contains = substring }
}

// New validates the configuration and builds a Sampler. Configuration
// problems surface here, before any request is made.
func New(cfg *config.Config, opts ...Option) (*Sampler, error) {
	if cfg == nil {
		return nil, errors.New("discovery: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limiter, err := throttle.New(cfg.RateLimit.ToThrottle())
	if err != nil {
		return nil, err
	}
	filter, err := config.CompileFilter(cfg.Exploration.Filter)
	if err != nil {
		return nil, err
	}

	differ := diff.New()
	differ.IgnorePaths = cfg.Diff.IgnorePaths

	s := &Sampler{
		cfg:      cfg,
		limiter:  limiter,
		inferrer: schema.NewInferrer(),
		differ:   differ,
		filter:   filter,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.Exploration.Timeout()}
	}
	return s, nil
}

// Limiter exposes the shared throttle, mainly so callers can inspect
// live stats while a sweep runs.
func (s *Sampler) Limiter() *throttle.Limiter { return s.limiter }

// Endpoints loads the published contracts and returns the operations a
// sweep would sample, after method, pattern, and cap filtering. The
// returned warnings describe contracts that failed to load; they do not
// stop a sweep.
func (s *Sampler) Endpoints() ([]*spec.Endpoint, []string, error) {
	docs, loadErr := spec.LoadDir(s.cfg.Specs.Dir, s.cfg.Specs.Patterns)
	if len(docs) == 0 {
		if loadErr != nil {
			return nil, nil, loadErr
		}
		return nil, nil, fmt.Errorf("no contracts found under %s", s.cfg.Specs.Dir)
	}

	var warnings []string
	if loadErr != nil {
		warnings = strings.Split(loadErr.Error(), "\n")
		s.log.Warn("some contracts failed to load", "count", len(warnings))
	}

	methods := make(map[string]bool, len(s.cfg.Exploration.Methods))
	for _, m := range s.cfg.Exploration.Methods {
		methods[strings.ToUpper(m)] = true
	}

	var endpoints []*spec.Endpoint
	for _, doc := range docs {
		for _, ep := range doc.Endpoints() {
			if !methods[ep.Method] {
				continue
			}
			if s.skipped(ep.Path) {
				continue
			}
			if s.contains != "" && !strings.Contains(ep.Path, s.contains) {
				continue
			}
			endpoints = append(endpoints, ep)
		}
	}
	if max := s.cfg.Exploration.MaxEndpoints; len(endpoints) > max {
		s.log.Info("endpoint cap reached", "loaded", len(endpoints), "cap", max)
		endpoints = endpoints[:max]
	}
	return endpoints, warnings, nil
}

func (s *Sampler) skipped(path string) bool {
	for _, pattern := range s.cfg.Exploration.SkipPatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// Run loads the published endpoints and sweeps them. Only configuration
// problems and context cancellation surface as errors; everything that
// goes wrong for a single endpoint lands on its Result.
func (s *Sampler) Run(ctx context.Context) (*Session, error) {
	endpoints, warnings, err := s.Endpoints()
	if err != nil {
		return nil, err
	}
	session, err := s.Sweep(ctx, endpoints)
	if session != nil && len(warnings) > 0 {
		session.Errors = append(warnings, session.Errors...)
	}
	return session, err
}

// Sweep samples the given endpoints across the configured namespaces,
// one goroutine per endpoint and namespace pair, all gated by the
// shared throttle. On cancellation the partial session is returned
// together with the context error.
func (s *Sampler) Sweep(ctx context.Context, endpoints []*spec.Endpoint) (*Session, error) {
	if s.cfg.APIURL == "" {
		return nil, errors.New("api_url is not configured (set it in the config file or DRIFTD_API_URL)")
	}

	session := &Session{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		BaseURL:    s.cfg.APIURL,
		Namespaces: append([]string(nil), s.cfg.Exploration.Namespaces...),
	}

	type task struct {
		ep        *spec.Endpoint
		namespace string
	}
	var tasks []task
	for _, ep := range endpoints {
		for _, ns := range session.Namespaces {
			keep, err := s.keep(ep, ns)
			if err != nil {
				session.Errors = append(session.Errors,
					fmt.Sprintf("filter %s %s [%s]: %v", ep.Method, ep.Path, ns, err))
				continue
			}
			if keep {
				tasks = append(tasks, task{ep: ep, namespace: ns})
			}
		}
	}

	s.log.Info("starting sweep",
		"session", session.ID,
		"endpoints", len(endpoints),
		"tasks", len(tasks),
		"namespaces", session.Namespaces)

	results := make([]*Result, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			results[i] = s.sampleEndpoint(ctx, t.ep, t.namespace)
		}(i, t)
	}
	wg.Wait()

	session.Results = results
	session.CompletedAt = time.Now().UTC()
	session.ThrottleStats = s.limiter.Stats()

	s.log.Info("sweep complete",
		"session", session.ID,
		"sampled", len(results),
		"successful", session.Successful(),
		"duration", session.Duration().Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return session, err
	}
	return session, nil
}

// keep evaluates the configured filter expression for one endpoint and
// namespace pair. Evaluation failures exclude the endpoint and are
// reported by the caller.
func (s *Sampler) keep(ep *spec.Endpoint, namespace string) (bool, error) {
	if s.filter == nil {
		return true, nil
	}
	out, err := expr.Run(s.filter, config.FilterEnv(ep.Path, ep.Method, ep.OperationID, namespace))
	if err != nil {
		return false, err
	}
	keep, ok := out.(bool)
	return ok && keep, nil
}

// sampleEndpoint takes the configured number of samples from one
// endpoint and folds them into a single Result. Individual sample
// failures only fail the Result when no sample produced anything.
func (s *Sampler) sampleEndpoint(ctx context.Context, ep *spec.Endpoint, namespace string) *Result {
	res := &Result{Path: ep.Path, Method: ep.Method, Namespace: namespace}
	target := s.targetURL(ep.Path, namespace)

	var merged *schema.Model
	var failures []string
	for i := 0; i < s.cfg.Exploration.SamplesPerEndpoint; i++ {
		obs, err := s.sampleOnce(ctx, ep.Method, target)
		if obs.status != 0 {
			res.StatusCode = obs.status
			res.ResponseTime = obs.elapsed
		}
		if err != nil {
			if ctx.Err() != nil {
				res.Err = ctx.Err().Error()
				return res
			}
			failures = append(failures, err.Error())
			continue
		}
		if obs.value == nil {
			continue
		}
		model := s.inferrer.Infer(obs.value)
		if merged == nil {
			merged = &model
		} else {
			next := schema.Merge(*merged, model)
			merged = &next
		}
		if len(res.Examples) < maxResultExamples {
			res.Examples = append(res.Examples, obs.value)
		}
	}

	if merged == nil {
		switch {
		case len(failures) > 0:
			res.Err = strings.Join(failures, "; ")
		case res.StatusCode != 0 && res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated:
			res.Err = fmt.Sprintf("HTTP %d", res.StatusCode)
		}
		return res
	}

	res.Schema = merged.Doc()
	if ep.Response != nil {
		res.DiffReport = &diff.Report{
			Endpoint: ep.Path,
			Method:   ep.Method,
			Diffs:    s.differ.Compare(ep.Response, res.Schema, ""),
		}
	}
	return res
}

// observation is what one completed request yielded. status is set for
// any response that arrived, even ones that ended in an error.
type observation struct {
	value      any
	status     int
	elapsed    time.Duration
	retryAfter *time.Duration
}

// sampleOnce performs one throttled request, retrying under the
// limiter's backoff for as long as the server answers 429 and the retry
// budget allows. The returned observation carries the last status even
// when err is non-nil.
func (s *Sampler) sampleOnce(ctx context.Context, method, target string) (observation, error) {
	for {
		if err := s.limiter.Acquire(ctx); err != nil {
			return observation{}, err
		}
		obs, err := s.attempt(ctx, method, target)
		s.limiter.Release()
		if err != nil {
			return obs, err
		}
		if obs.status != http.StatusTooManyRequests {
			s.limiter.OnSuccess()
			return obs, nil
		}
		if !s.limiter.OnThrottled(obs.retryAfter) {
			return obs, fmt.Errorf("%s %s: throttled, retry budget exhausted", method, target)
		}
		s.log.Debug("throttled, retrying", "method", method, "url", target,
			"backoff", s.limiter.CurrentBackoff())
	}
}

// attempt issues a single request and reads what matters from the
// response: the Retry-After hint on 429, the decoded body on success
// statuses, nothing otherwise.
func (s *Sampler) attempt(ctx context.Context, method, target string) (observation, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return observation{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AuthToken)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return observation{}, err
	}
	defer resp.Body.Close()

	obs := observation{status: resp.StatusCode, elapsed: time.Since(start)}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		drain(resp.Body)
		obs.retryAfter = httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	case http.StatusOK, http.StatusCreated:
		value, err := httputil.ReadJSON(resp.Body, httputil.DefaultBodyLimit)
		if err != nil {
			// A non-JSON success body still counts as a response; it
			// just contributes nothing to the schema.
			s.log.Warn("response body is not JSON", "method", method, "url", target, "error", err)
			break
		}
		obs.value = value
	default:
		drain(resp.Body)
	}
	return obs, nil
}

// targetURL builds the concrete request URL for a contract path.
func (s *Sampler) targetURL(path, namespace string) string {
	resolved := ResolvePathParams(path, namespace)
	if !strings.HasPrefix(resolved, "/") {
		resolved = "/" + resolved
	}
	return strings.TrimRight(s.cfg.APIURL, "/") + resolved
}

// drain consumes a bounded amount of an unwanted body so the
// connection can be reused.
func drain(body io.Reader) {
	io.Copy(io.Discard, io.LimitReader(body, 64<<10)) //nolint:errcheck
}
