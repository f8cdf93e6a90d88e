package ovs

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var vsctlRequestLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ovsd_ovs_vsctl_request_latency_milliseconds",
		Help:    "Latency of ovs-vsctl invocations",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	},
	[]string{"method", "code"},
)

func init() {
	prometheus.MustRegister(vsctlRequestLatency)
}

// methodOf returns the first argument that is not an option, which names
// the ovs-vsctl command being run.
func methodOf(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			return arg
		}
	}
	return ""
}
