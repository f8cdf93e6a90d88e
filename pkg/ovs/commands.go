package ovs

import "fmt"

// DefaultVsctlPath is where ovs-vsctl is installed on the target
const DefaultVsctlPath = "/usr/bin/ovs-vsctl"

// Command identifies an ovs-vsctl command, modifier or separator
type Command int

const (
	CmdCreateBridge Command = iota
	CmdDeleteBridge
	CmdAddPort
	CmdDeletePort
	CmdBridgeExists
	CmdBridgeToVLAN
	CmdBridgeToParent

	CmdGetController
	CmdSetController
	CmdDeleteController
	CmdSetFailMode
	CmdDeleteFailMode
	CmdGetFailMode

	CmdSetSSL
	CmdDeleteSSL
	CmdGetSSL

	CmdListPorts

	ModifierMayExist
	ModifierIfExists
	ModifierSSLBootstrap

	// ovs-vsctl applies commands separated by "--" as one database
	// transaction. Per-command options must follow the separator too, e.g.
	// ovs-vsctl -- --if-exists del-br br0.
	AtomicSeparator

	numCommands
)

var commandTokens = map[Command]string{
	CmdCreateBridge:   "add-br",
	CmdDeleteBridge:   "del-br",
	CmdAddPort:        "add-port",
	CmdDeletePort:     "del-port",
	CmdBridgeExists:   "br-exists",
	CmdBridgeToVLAN:   "br-to-vlan",
	CmdBridgeToParent: "br-to-parent",

	CmdGetController:    "get-controller",
	CmdSetController:    "set-controller",
	CmdDeleteController: "del-controller",
	CmdSetFailMode:      "set-fail-mode",
	CmdDeleteFailMode:   "del-fail-mode",
	CmdGetFailMode:      "get-fail-mode",

	CmdSetSSL:    "set-ssl",
	CmdDeleteSSL: "del-ssl",
	CmdGetSSL:    "get-ssl",

	CmdListPorts: "list-ports",

	ModifierMayExist:     "--may-exist",
	ModifierIfExists:     "--if-exists",
	ModifierSSLBootstrap: "--bootstrap",

	AtomicSeparator: "--",
}

func init() {
	for c := Command(0); c < numCommands; c++ {
		if commandTokens[c] == "" {
			panic(fmt.Sprintf("ovs: command %d has no ovs-vsctl token", c))
		}
	}
}

// String returns the literal ovs-vsctl token
func (c Command) String() string {
	return commandTokens[c]
}
