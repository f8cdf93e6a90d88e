// Package link reads kernel state of the network devices backing bridges.
package link

import (
	"fmt"

	"github.com/ovs-container-lab/ovsd/pkg/types"
	"github.com/vishvananda/netlink"
)

// Info is a snapshot of a kernel link
type Info struct {
	Name      string
	MTU       int
	MAC       string
	OperState string
	RxBytes   uint64
	TxBytes   uint64
	RxPackets uint64
	TxPackets uint64
}

// Inspector looks up kernel links by name
type Inspector interface {
	Inspect(name string) (*Info, error)
}

// NetlinkInspector implements Inspector with rtnetlink
type NetlinkInspector struct{}

// Inspect implements Inspector
func (NetlinkInspector) Inspect(name string) (*Info, error) {
	lk, err := netlink.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get link %s: %w", name, err)
	}

	attrs := lk.Attrs()
	info := &Info{
		Name:      attrs.Name,
		MTU:       attrs.MTU,
		OperState: attrs.OperState.String(),
	}
	if attrs.HardwareAddr != nil {
		info.MAC = attrs.HardwareAddr.String()
	}
	if stats := attrs.Statistics; stats != nil {
		info.RxBytes = stats.RxBytes
		info.TxBytes = stats.TxBytes
		info.RxPackets = stats.RxPackets
		info.TxPackets = stats.TxPackets
	}
	return info, nil
}

// Attributes renders the info as a reply table
func (i *Info) Attributes() types.Attributes {
	attrs := types.Attributes{
		"mtu":        uint32(i.MTU),
		"operstate":  i.OperState,
		"rx_bytes":   i.RxBytes,
		"tx_bytes":   i.TxBytes,
		"rx_packets": i.RxPackets,
		"tx_packets": i.TxPackets,
	}
	if i.MAC != "" {
		attrs["macaddr"] = i.MAC
	}
	return attrs
}
