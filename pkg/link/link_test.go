package link

import (
	"testing"

	"github.com/ovs-container-lab/ovsd/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoAttributes(t *testing.T) {
	info := &Info{
		Name:      "br-lan",
		MTU:       1500,
		MAC:       "02:00:00:00:00:01",
		OperState: "up",
		RxBytes:   10,
		TxBytes:   20,
		RxPackets: 1,
		TxPackets: 2,
	}

	assert.Equal(t, types.Attributes{
		"mtu":        uint32(1500),
		"operstate":  "up",
		"macaddr":    "02:00:00:00:00:01",
		"rx_bytes":   uint64(10),
		"tx_bytes":   uint64(20),
		"rx_packets": uint64(1),
		"tx_packets": uint64(2),
	}, info.Attributes())

	info.MAC = ""
	assert.NotContains(t, info.Attributes(), "macaddr")
}

func TestInspectLoopback(t *testing.T) {
	info, err := NetlinkInspector{}.Inspect("lo")
	if err != nil {
		t.Skipf("netlink not available: %v", err)
	}
	require.NotNil(t, info)
	assert.Equal(t, "lo", info.Name)
	assert.Positive(t, info.MTU)
}

func TestInspectMissingLink(t *testing.T) {
	_, err := NetlinkInspector{}.Inspect("ovsd-missing0")
	assert.Error(t, err)
}
