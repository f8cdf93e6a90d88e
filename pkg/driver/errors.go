package driver

import (
	"fmt"

	"github.com/ovs-container-lab/ovsd/pkg/types"
)

// RPCStatus maps an operation error to the status returned on the bus
func RPCStatus(err error) types.RPCStatus {
	switch types.StatusOf(err) {
	case types.StatusOK:
		return types.RPCStatusOK
	case types.StatusNotExist, types.StatusNoParent:
		return types.RPCStatusNotFound
	case types.StatusInvalidArgument, types.StatusInvalidVLAN:
		return types.RPCStatusInvalidArgument
	default:
		return types.RPCStatusUnknownError
	}
}

// Detail renders a failed operation for logs and error replies
func Detail(op, bridge string, err error) string {
	return fmt.Sprintf("Failed to %s %s: %s", op, bridge, types.StatusOf(err).Reason())
}
