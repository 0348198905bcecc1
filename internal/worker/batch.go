package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// Checker fact-checks a single claim
type Checker interface {
	Check(ctx context.Context, claim string) (*model.CheckResult, error)
}

// ClaimJob checks one claim from a batch
type ClaimJob struct {
	Index   int
	Claim   string
	Checker Checker
}

func (j *ClaimJob) Execute(ctx context.Context) Result {
	result, err := j.Checker.Check(ctx, j.Claim)
	return &ClaimResult{
		Index:  j.Index,
		Claim:  j.Claim,
		Result: result,
		Error:  err,
	}
}

// ClaimResult is the outcome of one batch entry
type ClaimResult struct {
	Index  int
	Claim  string
	Result *model.CheckResult
	Error  error
}

func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many claims concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessClaims checks every claim and returns the results in input order
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*ClaimResult {
	if len(claims) == 0 {
		return []*ClaimResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Ctrl-C stops the batch at once; queued claims are not started
	stop := context.AfterFunc(ctx, func() { pool.Shutdown() })

	accepted := true
	for i, claim := range claims {
		if !pool.Submit(&ClaimJob{Index: i, Claim: claim, Checker: b.checker}) {
			accepted = false
			break
		}
	}

	var results []Result
	if accepted && stop() {
		results = pool.Wait()
	} else {
		results = pool.Shutdown()
	}

	out := make([]*ClaimResult, 0, len(claims))
	done := make(map[int]bool, len(results))
	for _, result := range results {
		r := result.(*ClaimResult)
		done[r.Index] = true
		out = append(out, r)
	}

	// Claims dropped by a cancelled pool still get a row
	for i, claim := range claims {
		if !done[i] {
			out = append(out, &ClaimResult{Index: i, Claim: claim, Error: canceledErr(ctx)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func canceledErr(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return context.Canceled
}

// ProcessFile reads claims from a file and checks them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClaimResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads one claim per line. Blank lines and lines starting
// with # are skipped; repeated claims are checked once.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
