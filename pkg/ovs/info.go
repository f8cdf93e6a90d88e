package ovs

import (
	"github.com/ovs-container-lab/ovsd/pkg/types"
)

// DumpInfo collects the global SSL settings and, if bridge is set, the
// bridge's parent, VLAN, controllers, fail mode and ports into info.
// Captures that fail are left out of info.
func (c *Client) DumpInfo(info types.Attributes, bridge string) error {
	if ssl, err := c.CaptureTable(CmdGetSSL, ""); err != nil {
		c.logger.WithError(err).Warn("Failed to capture SSL settings")
	} else {
		info["ssl"] = ssl
	}

	if bridge == "" {
		return nil
	}

	vlan := c.BridgeToVLAN(bridge)
	if vlan < 0 {
		return types.NewError(types.StatusNotExist)
	}

	if parent := c.parentOf(bridge); parent != "" {
		info["parent"] = parent
	}

	if vlan > 0 {
		info["vlan"] = uint32(vlan)
	}

	if controllers, err := c.CaptureList(CmdGetController, bridge); err != nil {
		c.logger.WithError(err).Warnf("Failed to capture controllers of bridge %s", bridge)
	} else {
		info["ofcontrollers"] = controllers
	}

	if failMode, err := c.CaptureString(CmdGetFailMode, bridge); err != nil {
		c.logger.WithError(err).Warnf("Failed to capture fail mode of bridge %s", bridge)
	} else if failMode != "" {
		info["fail_mode"] = failMode
	}

	if ports, err := c.CaptureList(CmdListPorts, bridge); err != nil {
		c.logger.WithError(err).Warnf("Failed to capture ports of bridge %s", bridge)
	} else {
		info["ports"] = ports
	}

	return nil
}
