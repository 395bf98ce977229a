// Package runner runs the long-lived parts of an application together and
// stops them on a signal.
package runner

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
)

// Runnable runs until ctx is done or it fails.
type Runnable interface {
	Run(ctx context.Context) error
}

// Func is the func form of Runnable.
type Func func(ctx context.Context) error

// Run implements Runnable.
func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner runs Runnables and collects their errors. When any of them returns
// the others are cancelled.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	count  int
	errCh  chan error
	exitCh chan struct{}
}

// New creates a Runner.
func New(ctx context.Context) *Runner {
	r := &Runner{errCh: make(chan error, 1), exitCh: make(chan struct{})}
	r.ctx, r.cancel = context.WithCancel(ctx)
	return r
}

// HandleSignals cancels on SIGINT or SIGTERM, a second signal forces Wait to
// return.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts runnables.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		r.count++
		go func(runnable Runnable) {
			err := runnable.Run(r.ctx)
			r.cancel()
			r.errCh <- err
		}(runnable)
	}
	return r
}

// Stop cancels all runnables.
func (r *Runner) Stop() {
	r.cancel()
}

// Wait waits until all runnables returned and aggregates their errors.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for ; r.count > 0; r.count-- {
		select {
		case <-r.exitCh:
			return errors.New("forced exit")
		case err := <-r.errCh:
			if err != context.Canceled {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn which does not accept a context. onCancel is
// called when ctx is done before fn returns, and should make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return context.Canceled
	case err := <-errCh:
		return err
	}
}
