package command

import (
	"context"
	"sync"
)

// Recorder is a Runner that records commands instead of running them.
// Fail, when set, decides the result of each command.
type Recorder struct {
	mu   sync.Mutex
	Cmds []Cmd
	Fail func(Cmd) error
}

func (r *Recorder) Run(ctx context.Context, c Cmd) error {
	r.mu.Lock()
	r.Cmds = append(r.Cmds, c)
	fail := r.Fail
	r.mu.Unlock()
	if fail != nil {
		return fail(c)
	}
	return nil
}

// Lines returns the recorded commands rendered as strings.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Cmds))
	for i, c := range r.Cmds {
		out[i] = c.String()
	}
	return out
}
