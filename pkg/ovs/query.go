package ovs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// BridgeExists reports whether ovs-vsctl knows the bridge
func (c *Client) BridgeExists(bridge string) bool {
	if bridge == "" {
		return false
	}
	return c.invoker.Run(CmdBridgeExists.String(), bridge) == nil
}

// BridgeToVLAN returns the VLAN tag of a fake bridge, 0 for a real bridge
// or unparsable output, and -1 if the bridge does not exist.
func (c *Client) BridgeToVLAN(bridge string) int {
	if !c.BridgeExists(bridge) {
		return -1
	}
	return c.vlanOf(bridge)
}

func (c *Client) vlanOf(bridge string) int {
	line, err := c.firstLine(CmdBridgeToVLAN, bridge)
	if err != nil {
		c.logger.WithError(err).Debugf("Failed to read VLAN of bridge %s", bridge)
		return 0
	}
	tag, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0
	}
	return tag
}

// parentOf returns the parent of a fake bridge, empty for a bridge that is
// its own parent. The caller checks existence.
func (c *Client) parentOf(bridge string) string {
	line, err := c.firstLine(CmdBridgeToParent, bridge)
	if err != nil {
		c.logger.WithError(err).Debugf("Failed to read parent of bridge %s", bridge)
		return ""
	}
	parent := Sanitize(line)
	if parent == bridge {
		return ""
	}
	return parent
}

// CaptureString runs a read command and returns its sanitized first line
func (c *Client) CaptureString(cmd Command, bridge string) (string, error) {
	line, err := c.firstLine(cmd, bridge)
	if err != nil {
		return "", err
	}
	return Sanitize(line), nil
}

// CaptureList runs a read command and returns every sanitized output line
func (c *Client) CaptureList(cmd Command, bridge string) ([]string, error) {
	lines, err := c.lines(cmd, bridge)
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, len(lines))
	for _, line := range lines {
		list = append(list, Sanitize(line))
	}
	return list, nil
}

// CaptureTable runs a read command printing "key: value" lines and returns
// them as a map of sanitized keys to sanitized values. A line without a
// colon is stored whole under the empty key.
func (c *Client) CaptureTable(cmd Command, bridge string) (map[string]string, error) {
	lines, err := c.lines(cmd, bridge)
	if err != nil {
		return nil, err
	}
	return parseTable(lines), nil
}

func parseTable(lines []string) map[string]string {
	table := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			key, value = "", line
		}
		table[Sanitize(key)] = Sanitize(value)
	}
	return table
}

func (c *Client) firstLine(cmd Command, bridge string) (string, error) {
	out, err := c.output(cmd, bridge)
	if err != nil {
		return "", err
	}

	line, _, _ := bytes.Cut(out, []byte("\n"))
	line = bytes.TrimRight(line, "\r")
	if len(line) > MaxOutputLineSize {
		return "", fmt.Errorf("%s %s: %w", cmd, bridge, ErrLineTooLong)
	}
	return string(line), nil
}

func (c *Client) lines(cmd Command, bridge string) ([]string, error) {
	out, err := c.output(cmd, bridge)
	if err != nil {
		return nil, err
	}

	lines, err := splitLines(out)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", cmd, bridge, err)
	}
	return lines, nil
}

func (c *Client) output(cmd Command, bridge string) ([]byte, error) {
	args := []string{cmd.String()}
	if bridge != "" {
		args = append(args, bridge)
	}
	return c.invoker.Output(args...)
}
