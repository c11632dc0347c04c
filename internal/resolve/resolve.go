// Package resolve maps a feature configuration to the artifact groups a
// release has to ship.
package resolve

import (
	"strings"

	"github.com/heroiclabs/sdkbuild/artifact"
	"github.com/heroiclabs/sdkbuild/feature"
)

// Flag is a boolean input of the resolution table.
type Flag int

const (
	RESTClient Flag = iota
	GRPCClient
	CppRestRuntime
)

var flagNames = [...]string{"rest-client", "grpc-client", "cpprest-runtime"}

func (f Flag) String() string { return flagNames[f] }

func (f Flag) eval(c feature.Config) bool {
	switch f {
	case RESTClient:
		return c.RESTClient()
	case GRPCClient:
		return c.GRPCClient()
	case CppRestRuntime:
		return c.UsesCppRestRuntime()
	}
	return false
}

// Rule includes Group when any of AnyOf is set. An empty AnyOf always
// matches.
type Rule struct {
	Group string
	AnyOf []Flag
}

func (r Rule) matches(c feature.Config) bool {
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, f := range r.AnyOf {
		if f.eval(c) {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	if len(r.AnyOf) == 0 {
		return r.Group + ": always"
	}
	names := make([]string, len(r.AnyOf))
	for i, f := range r.AnyOf {
		names[i] = f.String()
	}
	return r.Group + ": " + strings.Join(names, " OR ")
}

var rules = []Rule{
	{Group: artifact.CoreLibrary},
	{Group: artifact.ProtobufRuntime, AnyOf: []Flag{RESTClient, GRPCClient}},
	{Group: artifact.TLSRuntime, AnyOf: []Flag{GRPCClient, CppRestRuntime}},
	{Group: artifact.GRPCRuntime, AnyOf: []Flag{GRPCClient}},
	{Group: artifact.RESTRuntime, AnyOf: []Flag{CppRestRuntime}},
}

// Rules returns a copy of the resolution table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Resolve returns the groups required by c in table order. Rules are
// evaluated in a single pass over the flags only, so no group influences
// another's eligibility.
func Resolve(c feature.Config) []artifact.Group {
	var groups []artifact.Group
	for _, r := range rules {
		if r.matches(c) {
			groups = append(groups, artifact.MustLookup(r.Group))
		}
	}
	return groups
}

// Names returns the names of groups.
func Names(groups []artifact.Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}
