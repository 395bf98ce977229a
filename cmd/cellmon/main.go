package main

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/cellular.go/pkg/console"
	"github.com/robotalks/cellular.go/pkg/env"
	"github.com/robotalks/cellular.go/pkg/runner"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.MustNewConfig()
	transport := conf.MustNewTransport()
	tracing, err := conf.NewTracing()
	if err != nil {
		glog.Exitln(err)
	}
	transport.Tracer = tracing.Tracer()

	con := console.New(transport)
	if err := con.Open(); err != nil {
		glog.Exitln(err)
	}
	shell := console.NewShell(con)

	r := runner.New(context.Background()).HandleSignals()
	r.Go(tracing, runner.Func(func(ctx context.Context) error {
		return runner.RunWithContextCancel(ctx, shell.Shell.Close, func() error {
			return shell.Run(flag.Args()...)
		})
	}))
	if err := r.Wait(); err != nil {
		glog.Errorln(err)
	}
	if con.Stack.IsOpen() {
		if err := con.Close(); err != nil {
			glog.Errorln(err)
		}
	}
}
