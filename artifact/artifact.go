// Package artifact is the static catalogue of the library files an SDK
// release can ship, bundled into named groups.
package artifact

// Kind is the physical flavour of a library file.
type Kind int

const (
	StaticLib Kind = iota // static archive (.a, .lib)
	SharedLib             // shared object (.so, .dylib, .dll)
	ImportLib             // import library accompanying a DLL
)

func (k Kind) String() string {
	switch k {
	case SharedLib:
		return "shared"
	case ImportLib:
		return "import"
	}
	return "static"
}

// Role is one logical library file inside a group, e.g. "ssl" inside
// "tls-runtime". Name is also the default base file name.
type Role struct {
	Name string
}

// Group is a named bundle of library files representing one logical
// dependency.
type Group struct {
	Name  string
	Roles []Role

	// EmbeddedInShared is set for dependencies that get linked into the
	// shared library and therefore are not shipped next to it.
	EmbeddedInShared bool
}

// RoleNames returns the role names of g in order.
func (g Group) RoleNames() []string {
	names := make([]string, len(g.Roles))
	for i, r := range g.Roles {
		names[i] = r.Name
	}
	return names
}

const (
	CoreLibrary     = "core-library"
	ProtobufRuntime = "protobuf-runtime"
	TLSRuntime      = "tls-runtime"
	GRPCRuntime     = "grpc-runtime"
	RESTRuntime     = "rest-runtime"
)

func roles(names ...string) []Role {
	rs := make([]Role, len(names))
	for i, n := range names {
		rs[i] = Role{Name: n}
	}
	return rs
}

var catalogue = []Group{
	{Name: CoreLibrary, Roles: roles("nakama-cpp")},
	{Name: ProtobufRuntime, Roles: roles("protobuf"), EmbeddedInShared: true},
	{Name: TLSRuntime, Roles: roles("ssl", "crypto"), EmbeddedInShared: true},
	{Name: GRPCRuntime, Roles: roles("address_sorting", "gpr", "grpc++", "grpc", "cares", "zlib"), EmbeddedInShared: true},
	{Name: RESTRuntime, Roles: roles("cpprest"), EmbeddedInShared: true},
}

// Lookup returns the group called name.
func Lookup(name string) (Group, bool) {
	for _, g := range catalogue {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// MustLookup is like Lookup but panics on an unknown name.
func MustLookup(name string) Group {
	g, ok := Lookup(name)
	if !ok {
		panic("artifact: unknown group " + name)
	}
	return g
}

// All returns every known group in catalogue order.
func All() []Group {
	return append([]Group(nil), catalogue...)
}
