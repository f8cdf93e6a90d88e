package driver

import (
	"errors"
	"fmt"

	goovs "github.com/digitalocean/go-openvswitch/ovs"
	"github.com/ovs-container-lab/ovsd/pkg/types"
)

// DecodeBridgeConfig builds a bridge config from a create or reload message.
// It rejects a missing name, an incomplete SSL file set and an unknown fail
// mode.
func DecodeBridgeConfig(msg types.Message) (*types.BridgeConfig, error) {
	tb := Parse(createPolicy, msg)

	name, _ := tb[AttrName].(string)
	if name == "" {
		return nil, types.Wrap(types.StatusInvalidArgument, errors.New("missing bridge name"))
	}
	cfg := &types.BridgeConfig{Name: name}

	parent, hasParent := tb[AttrParent].(string)
	vlan, hasVLAN := tb[AttrVLAN].(int32)
	if hasParent && hasVLAN {
		cfg.Parent = parent
		cfg.VLAN = int(vlan)
		cfg.HasVLAN = true
	}

	if v, ok := tb[AttrOFControllers]; ok {
		cfg.OFControllers = StringArray(v)
	}

	if v, ok := tb[AttrFailMode].(string); ok {
		switch mode := goovs.FailMode(v); mode {
		case goovs.FailModeStandalone, goovs.FailModeSecure:
			cfg.FailMode = mode
		default:
			return nil, types.Wrap(types.StatusInvalidArgument, fmt.Errorf("unknown fail mode %q", v))
		}
	}

	ssl, err := decodeSSL(tb)
	if err != nil {
		return nil, err
	}
	cfg.SSL = ssl

	return cfg, nil
}

func decodeSSL(tb types.Message) (*types.SSLConfig, error) {
	key, hasKey := tb[AttrSSLPrivateKey].(string)
	cert, hasCert := tb[AttrSSLCert].(string)
	ca, hasCA := tb[AttrSSLCACert].(string)

	switch {
	case !hasKey && !hasCert && !hasCA:
		return nil, nil
	case !hasKey || !hasCert || !hasCA:
		return nil, types.Wrap(types.StatusInvalidArgument, errors.New("incomplete SSL configuration"))
	}

	bootstrap, _ := tb[AttrSSLBootstrap].(bool)
	return &types.SSLConfig{
		PrivateKey: key,
		Cert:       cert,
		CACert:     ca,
		Bootstrap:  bootstrap,
	}, nil
}

// decodeBridge returns the required bridge attribute
func decodeBridge(msg types.Message) (string, error) {
	tb := Parse(bridgePolicy, msg)
	bridge, _ := tb[AttrBridge].(string)
	if bridge == "" {
		return "", types.Wrap(types.StatusInvalidArgument, errors.New("missing bridge"))
	}
	return bridge, nil
}

// decodeHotplug returns the required bridge and member attributes
func decodeHotplug(msg types.Message) (string, string, error) {
	tb := Parse(hotplugPolicy, msg)
	bridge, _ := tb[AttrBridge].(string)
	member, _ := tb[AttrMember].(string)
	if bridge == "" || member == "" {
		return "", "", types.Wrap(types.StatusInvalidArgument, errors.New("missing bridge or member"))
	}
	return bridge, member, nil
}
