package env

import (
	"context"
	"net/http"
	"time"

	"github.com/robotalks/cellular.go/pkg/clog"
	"github.com/robotalks/cellular.go/pkg/runner"
	"github.com/robotalks/cellular.go/pkg/trace"
)

// TracePath is the websocket endpoint of trace streaming.
const TracePath = "/trace"

const shutdownTimeout = time.Second

// Tracing holds the trace outputs enabled by a Config.
type Tracing struct {
	Publisher *trace.Publisher
	Hub       *trace.Hub
	Addr      string
}

// NewTracing creates the trace outputs.
func (c *Config) NewTracing() (*Tracing, error) {
	t := &Tracing{Addr: c.WebsocketAddr}
	if c.MQTTURL != "" {
		pub, err := trace.NewPublisher(c.MQTTURL, "cellular:"+c.ID)
		if err != nil {
			return nil, err
		}
		t.Publisher = pub
	}
	if c.WebsocketAddr != "" {
		t.Hub = trace.NewHub()
	}
	return t, nil
}

// Tracer returns the combined tracer, nil when nothing is enabled.
func (t *Tracing) Tracer() trace.Tracer {
	var tracers trace.Multi
	if t.Publisher != nil {
		tracers = append(tracers, t.Publisher)
	}
	if t.Hub != nil {
		tracers = append(tracers, t.Hub)
	}
	switch len(tracers) {
	case 0:
		return nil
	case 1:
		return tracers[0]
	}
	return tracers
}

// Run runs the enabled outputs until ctx is done.
func (t *Tracing) Run(ctx context.Context) error {
	if t.Publisher == nil && t.Hub == nil {
		<-ctx.Done()
		return nil
	}
	errCh := make(chan error, 2)
	var running int
	if t.Publisher != nil {
		running++
		go func() { errCh <- t.Publisher.Run(ctx) }()
	}
	if t.Hub != nil {
		running++
		go func() { errCh <- t.serve(ctx) }()
	}
	var errs runner.AggregatedError
	for ; running > 0; running-- {
		errs.Add(<-errCh)
	}
	return errs.Aggregate()
}

func (t *Tracing) serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(TracePath, t.Hub.Handler())
	server := &http.Server{Addr: t.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	clog.Cellular.Infof("trace: websocket on %s%s", t.Addr, TracePath)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
