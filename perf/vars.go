package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	HopsCommitted   = metric.NewCounter("10s1s")
	Disruptions     = metric.NewCounter("10s1s")
	Retransmissions = metric.NewCounter("10s1s")
	RunsDelivered   = metric.NewCounter("1m1s")
	RunsFailed      = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("dtnsim:Hops/s", HopsCommitted)
	expvar.Publish("dtnsim:Disruptions/s", Disruptions)
	expvar.Publish("dtnsim:Retransmissions/s", Retransmissions)
	expvar.Publish("dtnsim:RunsDelivered", RunsDelivered)
	expvar.Publish("dtnsim:RunsFailed", RunsFailed)
}
