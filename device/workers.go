package device

import "golang.org/x/sync/errgroup"

// workGroup is the half-open range of global ids one work-group covers.
type workGroup struct{ start, end int }

// workerQueue collects the work-groups assigned to one goroutine.
type workerQueue struct {
	groups []workGroup
}

// assignWorkGroups distributes work-groups across workers round robin.
func assignWorkGroups(workerCount int, groups []workGroup) []workerQueue {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(groups) {
		workerCount = len(groups)
	}
	queues := make([]workerQueue, workerCount)
	for idx, g := range groups {
		w := idx % workerCount
		queues[w].groups = append(queues[w].groups, g)
	}
	return queues
}

// runWorkGroups executes every work-item of a 1-D range. Work-groups run
// concurrently; items inside a group run in order.
func runWorkGroups(k MockKernel, args []any, global, local, workers int) {
	groups := make([]workGroup, 0, global/local)
	for start := 0; start < global; start += local {
		groups = append(groups, workGroup{start: start, end: start + local})
	}
	queues := assignWorkGroups(workers, groups)
	if len(queues) == 1 {
		runQueue(k, args, queues[0])
		return
	}
	var g errgroup.Group
	for _, q := range queues {
		g.Go(func() error {
			runQueue(k, args, q)
			return nil
		})
	}
	_ = g.Wait()
}

func runQueue(k MockKernel, args []any, q workerQueue) {
	for _, g := range q.groups {
		for id := g.start; id < g.end; id++ {
			k.Run(args, id)
		}
	}
}
