package services

import (
	"context"
	"fmt"
	"log"
	"missing-maps-service/internal/domain"
)

// Listener receives the outcome of an Execute call. Exactly one method is
// called, once, on the worker goroutine.
type Listener interface {
	OnSuccess(res Resolution)
	OnError(err error)
}

// ListenerFuncs adapts plain funcs to Listener. Nil funcs are skipped.
type ListenerFuncs struct {
	Success func(Resolution)
	Error   func(error)
}

func (l ListenerFuncs) OnSuccess(res Resolution) {
	if l.Success != nil {
		l.Success(res)
	}
}

func (l ListenerFuncs) OnError(err error) {
	if l.Error != nil {
		l.Error(err)
	}
}

// ResolutionTask is the handle of one background resolution attempt.
type ResolutionTask struct {
	done chan struct{}
	res  Resolution
	err  error
}

func newResolutionTask() *ResolutionTask {
	return &ResolutionTask{done: make(chan struct{})}
}

func (t *ResolutionTask) complete(res Resolution, err error) {
	t.res = res
	t.err = err
	close(t.done)
}

// Done is closed once the attempt has finished and the listener has returned.
func (t *ResolutionTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the attempt finishes or ctx ends. Giving up on the wait
// does not stop the attempt.
func (t *ResolutionTask) Wait(ctx context.Context) (Resolution, error) {
	select {
	case <-t.done:
		return t.res, t.err
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	}
}

// Execute starts Resolve on the executor and returns immediately. The attempt
// keeps running after ctx is cancelled. l may be nil.
func (m *MissingMapsMapper) Execute(ctx context.Context, rr *domain.RouteResult, l Listener) *ResolutionTask {
	if l == nil {
		l = ListenerFuncs{}
	}
	task := newResolutionTask()
	ctx = context.WithoutCancel(ctx)

	// Neither step may panic past this closure, or the task never completes.
	err := m.executor.Submit(func() {
		res, err := m.resolveRecovered(ctx, rr)
		notify(l, res, err)
		task.complete(res, err)
	})
	if err != nil {
		err = fmt.Errorf("execute missing maps resolution: %w", err)
		notify(l, Resolution{}, err)
		task.complete(Resolution{}, err)
	}

	return task
}

// resolveRecovered runs Resolve and reports a panic as an error.
func (m *MissingMapsMapper) resolveRecovered(ctx context.Context, rr *domain.RouteResult) (res Resolution, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Resolution{}, fmt.Errorf("resolve missing maps: panic: %v", r)
		}
	}()
	return m.Resolve(ctx, rr)
}

// notify calls the listener. A listener panic is logged and dropped.
func notify(l Listener, res Resolution, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("missingmaps: listener panicked: %v", r)
		}
	}()

	if err != nil {
		l.OnError(err)
		return
	}
	l.OnSuccess(res)
}
