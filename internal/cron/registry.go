package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is a housekeeping task run by the cron worker. Run reports how many
// rows or files it removed, even when it also returns an error.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Registry holds jobs in run order, keyed by name.
type Registry struct {
	order  []string
	byName map[string]Job
}

// NewRegistry registers jobs in the given order. Nil jobs are skipped.
func NewRegistry(jobs ...Job) (*Registry, error) {
	r := &Registry{byName: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		if err := r.Register(job); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	name := job.Name()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("cron job name is empty")
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("cron job %q registered twice", name)
	}
	r.byName[name] = job
	r.order = append(r.order, name)
	return nil
}

// Jobs returns a fresh slice of jobs in registration order.
func (r *Registry) Jobs() []Job {
	out := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Select narrows the registry to the named jobs, keeping registration order.
// An empty list selects everything.
func (r *Registry) Select(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown cron job %q", name)
		}
		wanted[name] = true
	}

	picked := &Registry{byName: make(map[string]Job, len(wanted))}
	for _, name := range r.order {
		if wanted[name] {
			picked.byName[name] = r.byName[name]
			picked.order = append(picked.order, name)
		}
	}
	return picked, nil
}
