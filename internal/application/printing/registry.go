package printing

import (
	"sort"
	"sync"

	"github.com/printhub/backend/internal/domain/printing"
	"github.com/printhub/backend/internal/domain/shared"
)

// JobRegistry is the in-process job store. Jobs live for the lifetime of the
// process and are never deleted; history does not survive a restart.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*printing.PrintJob
}

// NewJobRegistry creates an empty registry
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs: make(map[string]*printing.PrintJob),
	}
}

// Add registers a job. Ids are random and never reused, so a collision is a
// programming error.
func (r *JobRegistry) Add(job *printing.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return shared.NewDomainError("ALREADY_EXISTS", "job id already registered: "+job.ID)
	}
	r.jobs[job.ID] = job
	return nil
}

// Get returns a snapshot copy of the job with the given id
func (r *JobRegistry) Get(id string) (*printing.PrintJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Update applies fn to the job under the registry lock. All state
// transitions go through here so concurrent handlers never race on a job.
func (r *JobRegistry) Update(id string, fn func(*printing.PrintJob) error) (*printing.PrintJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "job not found: "+id)
	}
	if err := fn(job); err != nil {
		return nil, err
	}
	snapshot := *job
	return &snapshot, nil
}

// All returns snapshot copies of every job, newest first
func (r *JobRegistry) All() []*printing.PrintJob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*printing.PrintJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs
}

// Len returns the number of tracked jobs
func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
