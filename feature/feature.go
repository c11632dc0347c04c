// Package feature describes which optional parts of the SDK a build
// compiles: the link mode, the protocol clients and the transport backends.
package feature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid feature configuration")

// ConfigError reports an unrecognized option value.
type ConfigError struct {
	Option string
	Value  string
	Valid  []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: unrecognized value %q for %s (valid: %s)",
		ErrInvalidConfig, e.Value, e.Option, strings.Join(e.Valid, ", "))
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// -----------------------------------------------------------------------------

// LinkMode selects whether the library is built static or shared.
type LinkMode int

const (
	Static LinkMode = iota
	Shared
)

func (m LinkMode) String() string {
	if m == Shared {
		return "shared"
	}
	return "static"
}

// BuildMode selects the release or debug configuration.
type BuildMode int

const (
	Release BuildMode = iota
	Debug
)

func (m BuildMode) String() string {
	if m == Debug {
		return "debug"
	}
	return "release"
}

// CMakeName returns the configuration name used by CMake ("Debug", "Release").
func (m BuildMode) CMakeName() string {
	if m == Debug {
		return "Debug"
	}
	return "Release"
}

// HTTPTransport is the backend of the REST client.
type HTTPTransport int

const (
	HTTPNone HTTPTransport = iota
	HTTPCppRest
)

var httpNames = []string{"none", "cpprest"}

func (t HTTPTransport) String() string { return httpNames[t] }

// WebsocketTransport is the backend of the realtime client.
type WebsocketTransport int

const (
	WebsocketNone WebsocketTransport = iota
	WebsocketCppRest
	WebsocketPP
	WebsocketIX
)

var websocketNames = []string{"none", "cpprest", "websocketpp", "ixwebsocket"}

func (t WebsocketTransport) String() string { return websocketNames[t] }

// -----------------------------------------------------------------------------

// Options holds feature settings as they arrive from a config file or
// command-line flags. Empty strings select the defaults.
type Options struct {
	LinkMode           string `yaml:"link_mode"`
	BuildMode          string `yaml:"build_mode"`
	RESTClient         bool   `yaml:"rest_client"`
	GRPCClient         bool   `yaml:"grpc_client"`
	HTTPTransport      string `yaml:"http_transport"`
	WebsocketTransport string `yaml:"websocket_transport"`
}

// Config is an immutable feature configuration. Build one with New.
type Config struct {
	linkMode    LinkMode
	buildMode   BuildMode
	restClient  bool
	grpcClient  bool
	http        HTTPTransport
	websocket   WebsocketTransport
	usesCppRest bool
}

// New validates opts and returns the corresponding Config.
func New(opts Options) (Config, error) {
	var c Config
	var err error

	if c.linkMode, err = parseEnum("link_mode", opts.LinkMode, []string{"static", "shared"}, Static); err != nil {
		return Config{}, err
	}
	if c.buildMode, err = parseEnum("build_mode", opts.BuildMode, []string{"release", "debug"}, Release); err != nil {
		return Config{}, err
	}
	if c.http, err = parseEnum("http_transport", opts.HTTPTransport, httpNames, HTTPNone); err != nil {
		return Config{}, err
	}
	if c.websocket, err = parseEnum("websocket_transport", opts.WebsocketTransport, websocketNames, WebsocketNone); err != nil {
		return Config{}, err
	}
	c.restClient = opts.RESTClient
	c.grpcClient = opts.GRPCClient
	c.usesCppRest = c.http != HTTPNone || c.websocket == WebsocketCppRest
	return c, nil
}

func parseEnum[T ~int](option, value string, names []string, def T) (T, error) {
	if value == "" {
		return def, nil
	}
	v := strings.ToLower(strings.TrimSpace(value))
	for i, name := range names {
		if v == name {
			return T(i), nil
		}
	}
	return def, &ConfigError{Option: option, Value: value, Valid: names}
}

// LinkMode returns the selected link mode.
func (c Config) LinkMode() LinkMode { return c.linkMode }

// BuildMode returns the selected build configuration.
func (c Config) BuildMode() BuildMode { return c.buildMode }

// RESTClient reports whether the REST client is compiled in.
func (c Config) RESTClient() bool { return c.restClient }

// GRPCClient reports whether the gRPC client is compiled in.
func (c Config) GRPCClient() bool { return c.grpcClient }

// HTTPTransport returns the backend of the REST client.
func (c Config) HTTPTransport() HTTPTransport { return c.http }

// WebsocketTransport returns the backend of the realtime client.
func (c Config) WebsocketTransport() WebsocketTransport { return c.websocket }

// UsesCppRestRuntime reports whether any selected transport is backed by the
// C++ REST SDK.
func (c Config) UsesCppRestRuntime() bool { return c.usesCppRest }

// WithBuildMode returns a copy of c using mode.
func (c Config) WithBuildMode(mode BuildMode) Config {
	c.buildMode = mode
	return c
}

// WithLinkMode returns a copy of c using mode.
func (c Config) WithLinkMode(mode LinkMode) Config {
	c.linkMode = mode
	return c
}

// CMakeDefines returns the boolean cache entries that switch the features on
// in the library's CMake project. Keys are returned in a stable order.
func (c Config) CMakeDefines() []Define {
	return []Define{
		{"NAKAMA_SHARED_LIBRARY", c.linkMode == Shared},
		{"BUILD_REST_CLIENT", c.restClient},
		{"BUILD_GRPC_CLIENT", c.grpcClient},
		{"BUILD_HTTP_CPPREST", c.http == HTTPCppRest},
		{"BUILD_WEBSOCKET_CPPREST", c.websocket == WebsocketCppRest},
		{"BUILD_WEBSOCKET_WEBSOCKETPP", c.websocket == WebsocketPP},
		{"BUILD_WEBSOCKET_IXWEBSOCKET", c.websocket == WebsocketIX},
	}
}

// Define is a single boolean CMake cache entry.
type Define struct {
	Key   string
	Value bool
}

func (c Config) String() string {
	return fmt.Sprintf("link=%s mode=%s rest=%t grpc=%t http=%s websocket=%s cpprest=%t",
		c.linkMode, c.buildMode, c.restClient, c.grpcClient, c.http, c.websocket, c.usesCppRest)
}
