package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flowservice "ordernorm/internal/flow/service"
	"ordernorm/pkg/value"
)

// StdinPath names standard input in a list of files.
const StdinPath = "-"

// ErrNotProcessed marks a path the pool dropped without running it.
var ErrNotProcessed = errors.New("not processed")

// FlowRunner runs a named flow, as flowservice.FlowService does.
type FlowRunner interface {
	Execute(ctx context.Context, flowName string, input value.Value, origin flowservice.Origin) (*flowservice.RunResult, error)
}

// FileJob runs one flow over one JSON file.
type FileJob struct {
	Index  int
	Path   string
	Flow   string
	Runner FlowRunner
	Open   func(path string) (io.ReadCloser, error)
}

// FileResult is the outcome of a FileJob.
type FileResult struct {
	Index  int
	Path   string
	RunID  string
	Output value.Value
	Error  error
}

func (r *FileResult) GetError() error {
	return r.Error
}

func (j *FileJob) Execute(ctx context.Context) Result {
	result := &FileResult{Index: j.Index, Path: j.Path}

	input, err := j.read()
	if err != nil {
		result.Error = err
		return result
	}

	run, err := j.Runner.Execute(ctx, j.Flow, input, flowservice.Origin{
		Source:    flowservice.SourceCLI,
		RequestID: j.Path,
	})
	if run != nil {
		result.RunID = run.RunID
	}
	if err != nil {
		result.Error = fmt.Errorf("%s: %w", j.Path, err)
		return result
	}
	result.Output = run.Output
	return result
}

func (j *FileJob) read() (value.Value, error) {
	open := j.Open
	if open == nil {
		open = OpenInput
	}
	rc, err := open(j.Path)
	if err != nil {
		return value.Value{}, fmt.Errorf("open %s: %w", j.Path, err)
	}
	defer func() { _ = rc.Close() }()

	v, err := value.Decode(rc)
	if err != nil {
		return value.Value{}, fmt.Errorf("parse %s: %w", j.Path, err)
	}
	return v, nil
}

// OpenInput opens path, or standard input for StdinPath.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// BatchProcessor runs one flow over many files concurrently
type BatchProcessor struct {
	runner      FlowRunner
	flow        string
	concurrency int
}

func NewBatchProcessor(runner FlowRunner, flow string, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		flow:        flow,
		concurrency: concurrency,
	}
}

// ProcessFiles returns one result per path, in the order the paths were
// given. Paths are deduplicated. A path the pool never ran, because ctx
// ended first, gets a result carrying the context error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	paths = dedupe(paths)
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, path := range paths {
		if !pool.Submit(&FileJob{Index: i, Path: path, Flow: b.flow, Runner: b.runner}) {
			break
		}
	}

	fileResults := make([]*FileResult, len(paths))
	for _, result := range pool.Wait() {
		fr := result.(*FileResult)
		fileResults[fr.Index] = fr
	}
	for i, fr := range fileResults {
		if fr == nil {
			fileResults[i] = &FileResult{Index: i, Path: paths[i], Error: notProcessed(ctx, paths[i])}
		}
	}
	return fileResults
}

func notProcessed(ctx context.Context, path string) error {
	err := ctx.Err()
	if err == nil {
		err = ErrNotProcessed
	}
	return fmt.Errorf("%s: %w", path, err)
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
