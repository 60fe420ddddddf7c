package softrender

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// JobFunc is the unit of schedulable work. Job functions return no
// error; any result travels through the job's Ctx side channel.
type JobFunc func(js *JobSystem, j *Job)

// Job is one schedulable unit: a function, an opaque context, an
// optional parent, and a completion counter. A job is complete once its
// own function has returned and every child submitted under it has
// completed.
type Job struct {
	fn      JobFunc
	Ctx     any
	parent  *Job
	pending atomic.Int32
	done    chan struct{}
}

// Wait blocks until the job and all of its children have completed.
// It must not be called from inside a job function: with every worker
// blocked in Wait no one is left to drain the queues.
func (j *Job) Wait() {
	<-j.done
}

// Done reports completion without blocking.
func (j *Job) Done() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// workQueue is a fixed-capacity ring deque owned by one worker. The
// owner pushes and pops at the bottom (LIFO, cache-friendly); idle
// peers steal from the top (FIFO, oldest work first).
type workQueue struct {
	mu   sync.Mutex
	ring []*Job
	head int
	size int
}

func newWorkQueue(capacity int) *workQueue {
	return &workQueue{ring: make([]*Job, capacity)}
}

func (q *workQueue) pushBottom(j *Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == len(q.ring) {
		return false
	}
	q.ring[(q.head+q.size)%len(q.ring)] = j
	q.size++
	return true
}

func (q *workQueue) popBottom() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil
	}
	q.size--
	idx := (q.head + q.size) % len(q.ring)
	j := q.ring[idx]
	q.ring[idx] = nil
	return j
}

func (q *workQueue) stealTop() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil
	}
	j := q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	return j
}

// JobSystemConfig configures the scheduler. Zero values select one
// worker per logical CPU and a 2048-slot queue per worker.
type JobSystemConfig struct {
	Workers       int
	QueueCapacity int
	Logger        Logger
}

// JobSystemStats are cumulative counters over the system's lifetime.
type JobSystemStats struct {
	Submitted uint64
	Stolen    uint64
	Rejected  uint64
}

// JobSystem is a work-stealing scheduler: one permanently running
// worker goroutine per configured core, each draining its own deque
// LIFO and stealing FIFO from peers when empty. Stage ordering is the
// caller's concern, imposed by waiting on parent jobs between
// dispatch phases.
type JobSystem struct {
	queues      []*workQueue
	log         Logger
	next        atomic.Uint32 // round-robin cursor for external submits
	pendingJobs atomic.Int64
	stopped     atomic.Bool
	wg          sync.WaitGroup

	parkMu   sync.Mutex
	parkCond *sync.Cond

	submitted atomic.Uint64
	stolen    atomic.Uint64
	rejected  atomic.Uint64
}

// NewJobSystem spawns the worker goroutines. Startup failure is fatal
// to the caller: a renderer must not run on a partially initialized
// scheduler.
func NewJobSystem(cfg JobSystemConfig) (*JobSystem, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 2048
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}
	if cfg.QueueCapacity < 2 {
		return nil, fmt.Errorf("job system: queue capacity %d too small", cfg.QueueCapacity)
	}

	js := &JobSystem{
		queues: make([]*workQueue, cfg.Workers),
		log:    cfg.Logger,
	}
	js.parkCond = sync.NewCond(&js.parkMu)
	for i := range js.queues {
		js.queues[i] = newWorkQueue(cfg.QueueCapacity)
	}
	for i := range js.queues {
		js.wg.Add(1)
		go js.worker(i)
	}
	js.log.Debugf("job system started: %d workers, queue capacity %d", cfg.Workers, cfg.QueueCapacity)
	return js, nil
}

// NewJob creates a job ready for submission. If parent is non-nil the
// parent's pending-child counter is incremented; the parent completes
// only after this job does.
func (js *JobSystem) NewJob(fn JobFunc, ctx any, parent *Job) *Job {
	j := &Job{fn: fn, Ctx: ctx, parent: parent, done: make(chan struct{})}
	j.pending.Store(1)
	if parent != nil {
		parent.pending.Add(1)
	}
	return j
}

// Submit enqueues a job. It returns false when the system is shutting
// down or every worker queue is full; the caller must treat that as
// backpressure (retry, or run the job inline and Finish it).
func (js *JobSystem) Submit(j *Job) bool {
	if js.stopped.Load() {
		js.rejected.Add(1)
		return false
	}
	start := int(js.next.Add(1)) % len(js.queues)
	for i := 0; i < len(js.queues); i++ {
		if js.queues[(start+i)%len(js.queues)].pushBottom(j) {
			js.submitted.Add(1)
			js.pendingJobs.Add(1)
			js.parkMu.Lock()
			js.parkCond.Signal()
			js.parkMu.Unlock()
			return true
		}
	}
	js.rejected.Add(1)
	return false
}

// RunInline executes a job on the calling goroutine. It is the
// documented fallback when Submit reports backpressure; the job still
// participates in parent completion tracking.
func (js *JobSystem) RunInline(j *Job) {
	js.execute(j)
}

func (js *JobSystem) worker(id int) {
	defer js.wg.Done()
	own := js.queues[id]
	for {
		j := own.popBottom()
		if j == nil {
			j = js.steal(id)
		}
		if j != nil {
			js.pendingJobs.Add(-1)
			js.execute(j)
			continue
		}
		js.parkMu.Lock()
		if js.stopped.Load() {
			js.parkMu.Unlock()
			return
		}
		// pendingJobs is re-checked under the park lock: a submit that
		// raced the empty scan will have bumped it before signaling.
		if js.pendingJobs.Load() == 0 {
			js.parkCond.Wait()
		}
		js.parkMu.Unlock()
	}
}

func (js *JobSystem) steal(self int) *Job {
	for i := 1; i < len(js.queues); i++ {
		victim := js.queues[(self+i)%len(js.queues)]
		if j := victim.stealTop(); j != nil {
			js.stolen.Add(1)
			return j
		}
	}
	return nil
}

func (js *JobSystem) execute(j *Job) {
	if j.fn != nil {
		j.fn(js, j)
	}
	js.finish(j)
}

// finish retires one pending unit on j; at zero the job is complete
// and the completion propagates one pending unit up to the parent.
func (js *JobSystem) finish(j *Job) {
	for j != nil {
		if j.pending.Add(-1) != 0 {
			return
		}
		close(j.done)
		j = j.parent
	}
}

// Stop rejects further submissions, lets the workers drain what is
// already queued, and blocks until they exit. Safe to call more than
// once.
func (js *JobSystem) Stop() {
	if js.stopped.Swap(true) {
		return
	}
	js.parkMu.Lock()
	js.parkCond.Broadcast()
	js.parkMu.Unlock()
	js.wg.Wait()
	js.log.Debugf("job system stopped: %+v", js.Stats())
}

func (js *JobSystem) Workers() int { return len(js.queues) }

func (js *JobSystem) Stats() JobSystemStats {
	return JobSystemStats{
		Submitted: js.submitted.Load(),
		Stolen:    js.stolen.Load(),
		Rejected:  js.rejected.Load(),
	}
}

// SubmitOrRun submits the job, falling back to inline execution on
// backpressure. It reports whether the fallback was taken.
func (js *JobSystem) SubmitOrRun(j *Job) bool {
	if js.Submit(j) {
		return false
	}
	js.RunInline(j)
	return true
}
