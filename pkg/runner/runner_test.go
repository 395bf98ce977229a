package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerStopsOthers(t *testing.T) {
	failure := errors.New("publisher failed")
	r := New(context.Background())
	r.Go(
		Func(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		Func(func(ctx context.Context) error {
			return failure
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.Equal(t, failure.Error(), err.Error())
}

func TestRunnerStop(t *testing.T) {
	r := New(context.Background())
	r.Go(Func(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopCh := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCancel(ctx, func() { close(stopCh) }, func() error {
		<-stopCh
		return nil
	})
	require.Equal(t, context.Canceled, err)

	err = RunWithContextCancel(context.Background(), nil, func() error { return errors.New("done") })
	require.EqualError(t, err, "done")
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.Nil(t, errs.Aggregate())
	errs.Add(nil)
	require.Nil(t, errs.Aggregate())

	first := errors.New("first")
	errs.Add(first, nil, errors.New("second"))
	err := errs.Aggregate()
	require.Error(t, err)
	require.True(t, errors.Is(err, first))
	require.Equal(t, "Multiple errors:\nfirst\nsecond", err.Error())
}
