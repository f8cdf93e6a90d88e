package driver

import (
	"math"

	"github.com/ovs-container-lab/ovsd/pkg/types"
)

// AttrType is the expected JSON type of a request attribute
type AttrType int

const (
	AttrString AttrType = iota
	AttrInt32
	AttrArray
	AttrBool
	numAttrTypes
)

var attrTypeNames = map[AttrType]string{
	AttrString: "string",
	AttrInt32:  "int32",
	AttrArray:  "array",
	AttrBool:   "bool",
}

func init() {
	for t := AttrType(0); t < numAttrTypes; t++ {
		if _, ok := attrTypeNames[t]; !ok {
			panic("driver: attribute type without a name")
		}
	}
}

func (t AttrType) String() string {
	return attrTypeNames[t]
}

// Policy names one attribute of a method and its type
type Policy struct {
	Name string
	Type AttrType
}

// Attribute names
const (
	AttrName          = "name"
	AttrParent        = "parent"
	AttrVLAN          = "vlan"
	AttrOFControllers = "ofcontrollers"
	AttrFailMode      = "controller_fail_mode"
	AttrSSLPrivateKey = "ssl_private_key"
	AttrSSLCert       = "ssl_cert"
	AttrSSLCACert     = "ssl_ca_cert"
	AttrSSLBootstrap  = "ssl_bootstrap"
	AttrBridge        = "bridge"
	AttrMember        = "member"
)

var createPolicy = []Policy{
	{Name: AttrName, Type: AttrString},
	{Name: AttrParent, Type: AttrString},
	{Name: AttrVLAN, Type: AttrInt32},
	{Name: AttrOFControllers, Type: AttrArray},
	{Name: AttrFailMode, Type: AttrString},
	{Name: AttrSSLPrivateKey, Type: AttrString},
	{Name: AttrSSLCert, Type: AttrString},
	{Name: AttrSSLCACert, Type: AttrString},
	{Name: AttrSSLBootstrap, Type: AttrBool},
}

var bridgePolicy = []Policy{
	{Name: AttrBridge, Type: AttrString},
}

var hotplugPolicy = []Policy{
	{Name: AttrBridge, Type: AttrString},
	{Name: AttrMember, Type: AttrString},
}

// Parse picks the attributes named by policy out of msg. Attributes of the
// wrong type are dropped as if they were absent, so are unknown ones.
func Parse(policy []Policy, msg types.Message) types.Message {
	tb := make(types.Message, len(policy))
	for _, p := range policy {
		v, ok := msg[p.Name]
		if !ok {
			continue
		}
		if v, ok := coerce(p.Type, v); ok {
			tb[p.Name] = v
		}
	}
	return tb
}

// coerce checks v against t. JSON numbers arrive as float64 and are
// narrowed to int32.
func coerce(t AttrType, v interface{}) (interface{}, bool) {
	switch t {
	case AttrString:
		s, ok := v.(string)
		return s, ok
	case AttrBool:
		b, ok := v.(bool)
		return b, ok
	case AttrArray:
		a, ok := v.([]interface{})
		return a, ok
	case AttrInt32:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
				return nil, false
			}
			return int32(n), true
		case int:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, false
			}
			return int32(n), true
		case int32:
			return n, true
		}
	}
	return nil, false
}

// StringArray returns the string elements of an array attribute in order.
// Elements of any other type are skipped.
func StringArray(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
