package resolve

import (
	"slices"
	"testing"

	"github.com/heroiclabs/sdkbuild/artifact"
	"github.com/heroiclabs/sdkbuild/feature"
)

// allConfigs enumerates every combination of the options that can influence
// resolution.
func allConfigs(t *testing.T) []feature.Config {
	t.Helper()
	var configs []feature.Config
	for _, link := range []string{"static", "shared"} {
		for _, mode := range []string{"debug", "release"} {
			for _, http := range []string{"none", "cpprest"} {
				for _, ws := range []string{"none", "cpprest", "websocketpp", "ixwebsocket"} {
					for _, rest := range []bool{false, true} {
						for _, grpc := range []bool{false, true} {
							c, err := feature.New(feature.Options{
								LinkMode: link, BuildMode: mode,
								HTTPTransport: http, WebsocketTransport: ws,
								RESTClient: rest, GRPCClient: grpc,
							})
							if err != nil {
								t.Fatalf("feature.New: %v", err)
							}
							configs = append(configs, c)
						}
					}
				}
			}
		}
	}
	return configs
}

func TestCoreLibraryAlwaysPresent(t *testing.T) {
	for _, c := range allConfigs(t) {
		if names := Names(Resolve(c)); !slices.Contains(names, artifact.CoreLibrary) {
			t.Errorf("%s: %v lacks core-library", c, names)
		}
	}
}

func TestGRPCImpliesRuntimes(t *testing.T) {
	for _, c := range allConfigs(t) {
		if !c.GRPCClient() {
			continue
		}
		names := Names(Resolve(c))
		for _, want := range []string{artifact.ProtobufRuntime, artifact.TLSRuntime, artifact.GRPCRuntime} {
			if !slices.Contains(names, want) {
				t.Errorf("%s: %v lacks %s", c, names, want)
			}
		}
	}
}

func TestNoClientNoProtobuf(t *testing.T) {
	for _, c := range allConfigs(t) {
		if c.RESTClient() || c.GRPCClient() {
			continue
		}
		if names := Names(Resolve(c)); slices.Contains(names, artifact.ProtobufRuntime) {
			t.Errorf("%s: %v contains protobuf-runtime", c, names)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		opts feature.Options
		want []string
	}{
		{"empty", feature.Options{}, []string{"core-library"}},
		{"rest only", feature.Options{RESTClient: true}, []string{"core-library", "protobuf-runtime"}},
		{"grpc", feature.Options{GRPCClient: true}, []string{"core-library", "protobuf-runtime", "tls-runtime", "grpc-runtime"}},
		{"cpprest websocket", feature.Options{WebsocketTransport: "cpprest"}, []string{"core-library", "tls-runtime", "rest-runtime"}},
		{"default sdk", feature.Options{RESTClient: true, HTTPTransport: "cpprest", WebsocketTransport: "cpprest"},
			[]string{"core-library", "protobuf-runtime", "tls-runtime", "rest-runtime"}},
		{"everything", feature.Options{RESTClient: true, GRPCClient: true, HTTPTransport: "cpprest"},
			[]string{"core-library", "protobuf-runtime", "tls-runtime", "grpc-runtime", "rest-runtime"}},
		{"ixwebsocket only", feature.Options{WebsocketTransport: "ixwebsocket"}, []string{"core-library"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := feature.New(tt.opts)
			if err != nil {
				t.Fatalf("feature.New: %v", err)
			}
			if got := Names(Resolve(c)); !slices.Equal(got, tt.want) {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveIsStable(t *testing.T) {
	for _, c := range allConfigs(t) {
		first := Names(Resolve(c))
		for i := 0; i < 3; i++ {
			if got := Names(Resolve(c)); !slices.Equal(got, first) {
				t.Fatalf("%s: run %d = %v, want %v", c, i, got, first)
			}
		}
	}
}

func TestRulesCoverCatalogue(t *testing.T) {
	rs := Rules()
	if len(rs) != len(artifact.All()) {
		t.Fatalf("%d rules for %d groups", len(rs), len(artifact.All()))
	}
	for _, r := range rs {
		if _, ok := artifact.Lookup(r.Group); !ok {
			t.Errorf("rule for unknown group %s", r.Group)
		}
	}
	if got := rs[2].String(); got != "tls-runtime: grpc-client OR cpprest-runtime" {
		t.Errorf("rule string = %q", got)
	}
}
