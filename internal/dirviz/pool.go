package dirviz

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/dirviz/internal/metrics"
	"github.com/idelchi/dirviz/internal/queue"
)

// ErrWorkersStalled is returned by Drain when some workers never acknowledged termination.
var ErrWorkersStalled = errors.New("scan workers stalled")

type taskKind uint8

const (
	taskScan taskKind = iota
	taskStop
)

// task is one unit of work. A stop task tells the worker taking it to exit.
type task struct {
	kind taskKind
	path string
}

type messageKind uint8

const (
	messageResult messageKind = iota
	messageDone
	messageCrashed
)

// message is what workers send back: a scan result or a termination acknowledgment.
type message struct {
	kind   messageKind
	worker int
	result ScanResult
	err    error
}

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Workers is the number of parallel workers.
	Workers int
	// Scan is run for every submitted path.
	Scan ScanFunc
	// PollInterval bounds each blocking queue receive.
	PollInterval time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Clock        clockwork.Clock
}

// DrainReport summarizes how the workers finished.
type DrainReport struct {
	// Results is the number of scan results handed to the join function.
	Results int
	// Acknowledged is the number of workers that reported termination.
	Acknowledged int
	// Crashed is the number of acknowledgments sent by workers recovering from a panic.
	Crashed int
	// Unfinished is the number of workers never heard from.
	Unfinished int
}

// Pool runs a fixed number of workers sharing one task queue and one result queue.
type Pool struct {
	cfg     PoolConfig
	tasks   *queue.Queue[task]
	results *queue.Queue[message]
	group   errgroup.Group

	dirs  atomic.Int64
	files atomic.Int64
	bytes atomic.Int64
}

// NewPool creates a pool. Workers are not started until Start is called.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Pool{
		cfg:     cfg,
		tasks:   queue.New[task](),
		results: queue.New[message](),
	}
}

// Start launches the workers. They idle until tasks arrive and exit when they
// take a stop task or ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for id := range p.cfg.Workers {
		p.group.Go(func() error {
			p.work(ctx, id)

			return nil
		})
	}
}

// Submit queues path for a shallow scan.
func (p *Pool) Submit(path string) {
	p.tasks.Push(task{kind: taskScan, path: path})
	p.cfg.Metrics.SetQueued(p.tasks.Len())
}

// Stop queues one stop task per worker, behind all previously submitted work.
func (p *Pool) Stop() {
	for range p.cfg.Workers {
		p.tasks.Push(task{kind: taskStop})
	}
}

// Progress returns running totals of directories, files and bytes scanned.
func (p *Pool) Progress() (dirs, files, bytes int64) {
	return p.dirs.Load(), p.files.Load(), p.bytes.Load()
}

// work is the worker loop.
func (p *Pool) work(ctx context.Context, id int) {
	log := p.cfg.Logger.With(zap.Int("worker", id))

	p.cfg.Metrics.WorkerStarted()
	defer p.cfg.Metrics.WorkerStopped()

	defer func() {
		if r := recover(); r != nil {
			log.Warn("scan worker crashed", zap.Any("panic", r))
			p.results.Push(message{
				kind:   messageCrashed,
				worker: id,
				err:    fmt.Errorf("worker %d: %v", id, r),
			})
		}
	}()

	for {
		if ctx.Err() != nil {
			p.results.Push(message{kind: messageDone, worker: id})

			return
		}

		t, ok := p.tasks.Pop(p.cfg.PollInterval)
		if !ok {
			continue
		}

		if t.kind == taskStop {
			p.results.Push(message{kind: messageDone, worker: id})

			return
		}

		p.cfg.Metrics.SetQueued(p.tasks.Len())

		result, err := p.cfg.Scan(t.path)
		if err != nil {
			if isSkippable(err) {
				log.Debug("skipping directory", zap.String("path", t.path), zap.Error(err))
			} else {
				log.Warn("skipping directory", zap.String("path", t.path), zap.Error(err))
			}

			p.cfg.Metrics.ObserveSkip(metrics.StageList)

			continue
		}

		p.dirs.Add(1)
		p.files.Add(result.Files)
		p.bytes.Add(result.Bytes)
		p.cfg.Metrics.ObserveDir(result.Files, result.Bytes)

		p.results.Push(message{kind: messageResult, worker: id, result: result})
	}
}

// Drain hands every scan result to join until all workers have acknowledged
// termination. It must only be called after Stop.
//
// If no worker message arrives for stall (when positive), Drain gives up on the
// remaining workers and returns ErrWorkersStalled along with the partial report.
func (p *Pool) Drain(stall time.Duration, join func(ScanResult)) (DrainReport, error) {
	var report DrainReport

	last := p.cfg.Clock.Now()

	for report.Acknowledged < p.cfg.Workers {
		msg, ok := p.results.Pop(p.cfg.PollInterval)
		if !ok {
			if stall > 0 && p.cfg.Clock.Since(last) >= stall {
				report.Unfinished = p.cfg.Workers - report.Acknowledged

				return report, fmt.Errorf("%w: %d of %d workers unacknowledged after %v",
					ErrWorkersStalled, report.Unfinished, p.cfg.Workers, stall)
			}

			continue
		}

		last = p.cfg.Clock.Now()

		switch msg.kind {
		case messageResult:
			report.Results++

			join(msg.result)
		case messageCrashed:
			report.Crashed++
			report.Acknowledged++
		case messageDone:
			report.Acknowledged++
		}
	}

	return report, nil
}

// Wait waits up to timeout for every worker goroutine to return.
// It reports false if some are still running; those are abandoned.
func (p *Pool) Wait(timeout time.Duration) bool {
	done := make(chan struct{})

	go func() {
		_ = p.group.Wait()

		close(done)
	}()

	select {
	case <-done:
		return true
	case <-p.cfg.Clock.After(timeout):
		return false
	}
}
