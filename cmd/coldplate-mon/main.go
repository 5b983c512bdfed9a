package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/coldplate.go/pkg/env"
	fx "github.com/robotalks/coldplate.go/pkg/framework"
	"github.com/robotalks/coldplate.go/pkg/telemetry/mqtt"
	"github.com/robotalks/coldplate.go/pkg/telemetry/msgs"
)

func init() {
	env.SetupFlags()
}

func monitor(ctx context.Context, q *mqtt.Queue) error {
	mqtt.SubscribeMeta(q, func(ref mqtt.DeviceRef, meta *msgs.Meta) {
		if meta == nil {
			glog.Infof("%s: offline", ref.Name())
			return
		}
		glog.Infof("%s: online %s %s serial=%s port=%s", ref.Name(), meta.Description, meta.Version, meta.Serial, meta.Port)
	})
	mqtt.SubscribeEvents(q, func(ref mqtt.DeviceRef, ev *msgs.Event) {
		e := ev.ToEvent()
		glog.Infof("%s: %s [%s] %s", ref.Name(), e.Time.Format(time.RFC3339), ev.Kind, e)
	})
	return fx.RunWithContextCloser(ctx, q, func() error {
		token := q.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
}

func main() {
	flag.Parse()
	conf := env.NewConfig()
	if err := conf.LoadFile(); err != nil {
		glog.Exit(err)
	}
	q, err := conf.NewQueue()
	if err != nil {
		glog.Exit(err)
	}
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("monitor", fx.RunFunc(func(ctx context.Context) error {
		return monitor(ctx, q)
	})))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
