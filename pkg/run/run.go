// Package run provides lifecycle helpers for long-running tasks.
package run

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/golang/glog"
)

// Task is a long-running unit of work bounded by a context.
type Task interface {
	Run(context.Context) error
}

// TaskFunc is the func form of Task.
type TaskFunc func(context.Context) error

// Run implements Task.
func (f TaskFunc) Run(ctx context.Context) error { return f(ctx) }

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

type namedTask struct {
	Task
	name string
}

func (t *namedTask) Name() string { return t.name }

// Name wraps a Task with a name for logging.
func Name(name string, task Task) Task {
	return &namedTask{name: name, Task: task}
}

// Errors aggregates failures from multiple tasks.
type Errors struct {
	Errs []error
}

// Error implements error.
func (e *Errors) Error() string {
	msg := make([]string, len(e.Errs)+1)
	msg[0] = "multiple errors:"
	for n, err := range e.Errs {
		msg[n+1] = err.Error()
	}
	return strings.Join(msg, "\n")
}

// Add appends errors, skipping nil.
func (e *Errors) Add(errs ...error) *Errors {
	for _, err := range errs {
		if err != nil {
			e.Errs = append(e.Errs, err)
		}
	}
	return e
}

// Aggregate returns an aggregated error, or nil if none happened.
func (e *Errors) Aggregate() error {
	switch len(e.Errs) {
	case 0:
		return nil
	case 1:
		return e.Errs[0]
	}
	return e
}

// Group runs tasks concurrently and collects their errors.
type Group struct {
	Context context.Context

	count  int
	errCh  chan error
	exitCh chan struct{}
}

// NewGroup creates a Group with a background context.
func NewGroup() *Group {
	return NewGroupWith(context.Background())
}

// NewGroupWith creates a Group with the specified context.
func NewGroupWith(ctx context.Context) *Group {
	return &Group{
		Context: ctx,
		errCh:   make(chan error, 1),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the group context on CtrlC or SIGTERM, and forces
// exit on a second signal.
func (g *Group) HandleSignals() *Group {
	ctx, cancel := context.WithCancel(g.Context)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	g.Context = ctx
	go func() {
		<-sigCh
		glog.Info("stop requested")
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(g.exitCh)
	}()
	return g
}

// Go spawns tasks with the group context.
func (g *Group) Go(tasks ...Task) *Group {
	for _, task := range tasks {
		var name string
		if named, ok := task.(Named); ok {
			name = named.Name()
		} else {
			name = strconv.Itoa(g.count)
		}
		g.count++
		go func(task Task, name string) {
			glog.V(4).Infof("task[%s] started", name)
			g.errCh <- task.Run(g.Context)
			glog.V(4).Infof("task[%s] stopped", name)
		}(task, name)
	}
	return g
}

// Wait blocks until every spawned task stops and aggregates their errors.
// Context cancellation is not reported as a failure.
func (g *Group) Wait() error {
	var errs Errors
	for i := 0; i < g.count; i++ {
		select {
		case <-g.exitCh:
			return errors.New("forced exit")
		case err := <-g.errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}
