package types

import (
	goovs "github.com/digitalocean/go-openvswitch/ovs"
)

// VLANMask covers the 12 bits of an 802.1Q VLAN identifier
const VLANMask = 0xfff

// Message is an untyped attribute message as received over the bus
type Message map[string]interface{}

// Attributes is the structured payload of a reply. A new one is allocated
// for every request.
type Attributes map[string]interface{}

// SSLConfig holds the files handed to ovs-vsctl set-ssl
type SSLConfig struct {
	PrivateKey string // Private key file
	Cert       string // Certificate file
	CACert     string // CA certificate file
	Bootstrap  bool   // Fetch the CA certificate from the controller
}

// BridgeConfig describes the desired state of a bridge
type BridgeConfig struct {
	Name string // Bridge name

	// Fake bridge parameters
	Parent  string // Parent bridge
	VLAN    int    // VLAN tag on the parent
	HasVLAN bool   // VLAN was supplied

	// OpenFlow controller parameters
	OFControllers []string       // Controller targets, in order
	FailMode      goovs.FailMode // Behaviour when no controller is reachable

	SSL *SSLConfig // nil unless all SSL files were given
}

// IsFakeBridge reports whether the config describes a VLAN sub-bridge
func (c *BridgeConfig) IsFakeBridge() bool {
	return c.Parent != "" && c.HasVLAN
}

// HasControllers reports whether OpenFlow controllers were requested
func (c *BridgeConfig) HasControllers() bool {
	return len(c.OFControllers) > 0
}

// ValidVLAN reports whether tag may be used for a fake bridge. 0xfff is
// reserved by 802.1Q.
func ValidVLAN(tag int) bool {
	if tag < 0 || tag > VLANMask {
		return false
	}
	return tag == 0 || tag&VLANMask != VLANMask
}

// Reply is the outcome of one RPC method call
type Reply struct {
	Status RPCStatus  `json:"status"`
	Data   Attributes `json:"data,omitempty"`
}
