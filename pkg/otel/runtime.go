package otel

import (
	"time"

	hostmetrics "go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

// StartRuntimeMetrics starts Go runtime metrics (memory, GC, goroutines) and
// host metrics (CPU, memory, network) on the global meter provider. Long
// replays and benchmark runs use them to relate chunk tuning to allocation
// and CPU behaviour.
func StartRuntimeMetrics() error {
	if err := runtime.Start(
		runtime.WithMinimumReadMemStatsInterval(time.Second * 30),
	); err != nil {
		return err
	}

	return hostmetrics.Start()
}
