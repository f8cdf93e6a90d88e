package ovs

import (
	"fmt"
	"strconv"

	goovs "github.com/digitalocean/go-openvswitch/ovs"
	"github.com/ovs-container-lab/ovsd/pkg/types"
	"github.com/sirupsen/logrus"
)

// Client provides bridge and port operations on top of ovs-vsctl
type Client struct {
	invoker Invoker
	logger  *logrus.Logger
}

// NewClient creates a new OVS client running commands through invoker
func NewClient(invoker Invoker, logger *logrus.Logger) *Client {
	return &Client{
		invoker: invoker,
		logger:  logger,
	}
}

// BuildCreateBridge computes the single ovs-vsctl transaction that brings
// the bridge described by cfg into existence. A fake bridge takes
// precedence over controller settings. Fake bridges are validated here,
// which costs one br-exists invocation for the parent.
func (c *Client) BuildCreateBridge(cfg *types.BridgeConfig) (*Transaction, error) {
	if cfg == nil || cfg.Name == "" {
		return nil, types.NewError(types.StatusInvalidArgument)
	}

	tx := NewTransaction(ModifierMayExist.String(), CmdCreateBridge.String(), cfg.Name)

	if cfg.IsFakeBridge() {
		if !types.ValidVLAN(cfg.VLAN) {
			return nil, types.Wrap(types.StatusInvalidVLAN, fmt.Errorf("VLAN tag %d", cfg.VLAN))
		}
		if !c.BridgeExists(cfg.Parent) {
			return nil, types.Wrap(types.StatusNoParent, fmt.Errorf("parent bridge %s", cfg.Parent))
		}
		return tx.Append(cfg.Parent, strconv.Itoa(cfg.VLAN)), nil
	}

	if !cfg.HasControllers() {
		return tx, nil
	}

	tx.Then(CmdSetController.String(), cfg.Name).Append(cfg.OFControllers...)

	failMode := cfg.FailMode
	if failMode == "" {
		failMode = goovs.FailModeStandalone
	}
	switch failMode {
	case goovs.FailModeSecure, goovs.FailModeStandalone:
		tx.Then(CmdSetFailMode.String(), cfg.Name, string(failMode))
	default:
		return nil, types.Wrap(types.StatusInvalidArgument, fmt.Errorf("fail mode %q", failMode))
	}

	if ssl := cfg.SSL; ssl != nil {
		if ssl.Bootstrap {
			tx.Then(ModifierSSLBootstrap.String(), CmdSetSSL.String())
		} else {
			tx.Then(CmdSetSSL.String())
		}
		tx.Append(ssl.PrivateKey, ssl.Cert, ssl.CACert)
	}

	return tx, nil
}

// CreateBridge creates the bridge described by cfg with one ovs-vsctl run
func (c *Client) CreateBridge(cfg *types.BridgeConfig) error {
	tx, err := c.BuildCreateBridge(cfg)
	if err != nil {
		return err
	}

	if err := c.Commit(tx); err != nil {
		return err
	}

	c.logger.Infof("Created OVS bridge %s", cfg.Name)
	return nil
}

// Commit runs tx as a single ovs-vsctl invocation
func (c *Client) Commit(tx *Transaction) error {
	if err := c.invoker.Run(tx.Args()...); err != nil {
		return types.Wrap(types.StatusUnknown, err)
	}
	return nil
}

// DeleteBridge removes a bridge. Removing a missing bridge succeeds.
func (c *Client) DeleteBridge(bridge string) error {
	if bridge == "" {
		return types.NewError(types.StatusInvalidArgument)
	}

	err := c.invoker.Run(ModifierIfExists.String(), CmdDeleteBridge.String(), bridge)
	if err != nil {
		return types.Wrap(types.StatusUnknown, err)
	}

	c.logger.Infof("Deleted OVS bridge %s", bridge)
	return nil
}

// AddPort adds a port to an existing bridge
func (c *Client) AddPort(bridge, port string) error {
	if !c.BridgeExists(bridge) {
		return types.NewError(types.StatusNotExist)
	}

	err := c.invoker.Run(ModifierMayExist.String(), CmdAddPort.String(), bridge, port)
	if err != nil {
		return types.Wrap(types.StatusUnknown, err)
	}

	c.logger.Infof("Added port %s to bridge %s", port, bridge)
	return nil
}

// RemovePort removes a port from a bridge. A missing bridge has no ports,
// so the removal succeeds without touching the database.
func (c *Client) RemovePort(bridge, port string) error {
	if !c.BridgeExists(bridge) {
		c.logger.Debugf("Bridge %s does not exist, nothing to remove", bridge)
		return nil
	}

	err := c.invoker.Run(ModifierIfExists.String(), CmdDeletePort.String(), bridge, port)
	if err != nil {
		return types.Wrap(types.StatusUnknown, err)
	}

	c.logger.Infof("Deleted port %s from bridge %s", port, bridge)
	return nil
}
