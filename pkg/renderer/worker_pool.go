package renderer

import (
	"runtime"
	"sync"

	"github.com/slbench/depthcast/pkg/core"
)

// columnResult carries the hit records of one rendered column along with
// its index, so the collector can restore scan order
type columnResult struct {
	Column  int
	Records []DepthRecord
}

// workerPool renders sensor columns in parallel. Column casts share only
// the read-only mesh and source, so workers need no synchronization beyond
// the task and result channels.
type workerPool struct {
	renderer    *Renderer
	originLocal core.Vec3
	taskQueue   chan int
	resultQueue chan columnResult
	numWorkers  int
	wg          sync.WaitGroup
}

// newWorkerPool creates a pool with the given number of workers; <= 0 uses
// one worker per CPU
func newWorkerPool(renderer *Renderer, originLocal core.Vec3, numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &workerPool{
		renderer:    renderer,
		originLocal: originLocal,
		taskQueue:   make(chan int, renderer.grid.Width),
		resultQueue: make(chan columnResult, renderer.grid.Width),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *workerPool) Start() {
	for w := 0; w < wp.numWorkers; w++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Submit queues one column for rendering
func (wp *workerPool) Submit(column int) {
	wp.taskQueue <- column
}

// Stop signals that no more columns are coming and closes the result
// channel once all workers have drained the queue
func (wp *workerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Results returns the channel of completed columns
func (wp *workerPool) Results() <-chan columnResult {
	return wp.resultQueue
}

// NumWorkers returns the number of workers in the pool
func (wp *workerPool) NumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *workerPool) run() {
	defer wp.wg.Done()

	for column := range wp.taskQueue {
		records := wp.renderer.renderColumn(column, wp.originLocal, nil)
		wp.resultQueue <- columnResult{Column: column, Records: records}
	}
}
