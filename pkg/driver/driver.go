package driver

import (
	"sort"
	"strconv"
	"sync"

	"github.com/ovs-container-lab/ovsd/pkg/link"
	"github.com/ovs-container-lab/ovsd/pkg/notify"
	"github.com/ovs-container-lab/ovsd/pkg/ovs"
	"github.com/ovs-container-lab/ovsd/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ObjectName is the bus object the driver is registered as
const ObjectName = "ovs"

// Method names
const (
	MethodCreate     = "create"
	MethodConfigure  = "configure"
	MethodReload     = "reload"
	MethodDumpInfo   = "dump_info"
	MethodDumpStats  = "dump_stats"
	MethodCheckState = "check_state"
	MethodFree       = "free"
	MethodAdd        = "add"
	MethodRemove     = "remove"
	MethodPrepare    = "prepare"
)

var rpcRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ovsd_rpc_requests_total",
		Help: "RPC requests handled by the ovs object",
	},
	[]string{"method", "status"},
)

func init() {
	prometheus.MustRegister(rpcRequestsTotal)
}

// Handler implements one method. It fills reply and returns the outcome.
type Handler func(msg types.Message, reply types.Attributes) error

// Driver implements the ovs bus object on top of ovs-vsctl
type Driver struct {
	sync.Mutex
	ovs      *ovs.Client
	notifier notify.Notifier
	links    link.Inspector
	logger   *logrus.Logger
	methods  map[string]Handler
}

// New creates a new driver. links may be nil, in which case dump_info
// carries no kernel link table.
func New(client *ovs.Client, notifier notify.Notifier, links link.Inspector, logger *logrus.Logger) *Driver {
	d := &Driver{
		ovs:      client,
		notifier: notifier,
		links:    links,
		logger:   logger,
	}

	d.methods = map[string]Handler{
		MethodCreate:     d.Create,
		MethodConfigure:  d.Configure,
		MethodReload:     d.Reload,
		MethodDumpInfo:   d.DumpInfo,
		MethodDumpStats:  d.DumpStats,
		MethodCheckState: d.CheckState,
		MethodFree:       d.Free,
		MethodAdd:        d.Add,
		MethodRemove:     d.Remove,
		MethodPrepare:    d.Prepare,
	}
	return d
}

// Methods returns the sorted names of all methods
func (d *Driver) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a method to completion. Calls are serialised, so at most one
// ovs-vsctl process runs at a time.
func (d *Driver) Invoke(method string, msg types.Message) *types.Reply {
	handler, ok := d.methods[method]
	if !ok {
		d.logger.WithField("method", method).Warn("Unknown method")
		rpcRequestsTotal.WithLabelValues(method, strconv.Itoa(int(types.RPCStatusMethodNotFound))).Inc()
		return &types.Reply{Status: types.RPCStatusMethodNotFound}
	}

	d.Lock()
	defer d.Unlock()

	d.logger.WithFields(logrus.Fields{
		"method":  method,
		"message": msg,
	}).Debug("Handling request")

	reply := types.Attributes{}
	status := RPCStatus(handler(msg, reply))
	rpcRequestsTotal.WithLabelValues(method, strconv.Itoa(int(status))).Inc()

	return &types.Reply{Status: status, Data: reply}
}

// Create creates a bridge and announces it to netifd
func (d *Driver) Create(msg types.Message, reply types.Attributes) error {
	cfg, err := DecodeBridgeConfig(msg)
	if err != nil {
		d.logger.WithError(err).Warn("Rejected create request")
		return err
	}

	if err := d.ovs.CreateBridge(cfg); err != nil {
		detail := Detail("create", cfg.Name, err)
		d.logger.WithError(err).Error(detail)
		reply["message"] = detail
		return err
	}

	d.notifier.Notify(notify.EventCreate, cfg.Name, "")
	return nil
}

// Configure is accepted and ignored
func (d *Driver) Configure(types.Message, types.Attributes) error {
	return nil
}

// Reload deletes the bridge and creates it again from the message. The new
// configuration is validated before anything is deleted. Once the old
// bridge is gone netifd is told about the reload even when the re-creation
// fails.
func (d *Driver) Reload(msg types.Message, reply types.Attributes) error {
	cfg, err := DecodeBridgeConfig(msg)
	if err != nil {
		d.logger.WithError(err).Warn("Rejected reload request")
		return err
	}

	tx, err := d.ovs.BuildCreateBridge(cfg)
	if err != nil {
		detail := Detail("reload", cfg.Name, err)
		d.logger.WithError(err).Warn(detail)
		reply["message"] = detail
		return err
	}

	if err := d.ovs.DeleteBridge(cfg.Name); err != nil {
		d.logger.WithError(err).Warnf("Failed to delete bridge %s before reload", cfg.Name)
	}

	err = d.ovs.Commit(tx)
	if err != nil {
		detail := Detail("re-create", cfg.Name, err)
		d.logger.WithError(err).Error(detail)
		reply["message"] = detail
	} else {
		d.logger.Infof("Reloaded OVS bridge %s", cfg.Name)
	}

	d.notifier.Notify(notify.EventReload, cfg.Name, "")
	return err
}

// DumpInfo reports the global SSL settings and, if a bridge is named, its
// configuration, ports and kernel link state
func (d *Driver) DumpInfo(msg types.Message, reply types.Attributes) error {
	bridge, _ := Parse(bridgePolicy, msg)[AttrBridge].(string)

	if err := d.ovs.DumpInfo(reply, bridge); err != nil {
		d.logger.WithError(err).Debugf("Failed to dump info of bridge %s", bridge)
		return err
	}

	if bridge == "" || d.links == nil {
		return nil
	}

	info, err := d.links.Inspect(bridge)
	if err != nil {
		d.logger.WithError(err).Debugf("No kernel link for bridge %s", bridge)
		return nil
	}
	reply["link"] = info.Attributes()
	return nil
}

// DumpStats is reserved
func (d *Driver) DumpStats(types.Message, types.Attributes) error {
	return nil
}

// CheckState fails if the bridge does not exist
func (d *Driver) CheckState(msg types.Message, _ types.Attributes) error {
	bridge, err := decodeBridge(msg)
	if err != nil {
		return err
	}

	if !d.ovs.BridgeExists(bridge) {
		return types.NewError(types.StatusNotExist)
	}
	return nil
}

// Free deletes a bridge and announces it to netifd
func (d *Driver) Free(msg types.Message, _ types.Attributes) error {
	bridge, err := decodeBridge(msg)
	if err != nil {
		return err
	}

	if err := d.ovs.DeleteBridge(bridge); err != nil {
		d.logger.WithError(err).Errorf("Failed to delete bridge %s", bridge)
		return err
	}

	d.notifier.Notify(notify.EventFree, bridge, "")
	return nil
}

// Add attaches a member port to an existing bridge
func (d *Driver) Add(msg types.Message, _ types.Attributes) error {
	bridge, member, err := decodeHotplug(msg)
	if err != nil {
		return err
	}

	if err := d.ovs.AddPort(bridge, member); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"bridge": bridge,
			"member": member,
		}).Error("Failed to add port")
		return err
	}

	d.notifier.Notify(notify.EventAdd, bridge, member)
	return nil
}

// Remove detaches a member port. Removing from a missing bridge succeeds
// and is announced like any other removal.
func (d *Driver) Remove(msg types.Message, _ types.Attributes) error {
	bridge, member, err := decodeHotplug(msg)
	if err != nil {
		return err
	}

	if err := d.ovs.RemovePort(bridge, member); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"bridge": bridge,
			"member": member,
		}).Error("Failed to remove port")
		return err
	}

	d.notifier.Notify(notify.EventRemove, bridge, member)
	return nil
}

// Prepare announces that members are about to be attached to bridge
func (d *Driver) Prepare(msg types.Message, _ types.Attributes) error {
	bridge, err := decodeBridge(msg)
	if err != nil {
		return err
	}

	if !d.ovs.BridgeExists(bridge) {
		return types.NewError(types.StatusNotExist)
	}

	d.notifier.Notify(notify.EventPrepare, bridge, "")
	return nil
}
