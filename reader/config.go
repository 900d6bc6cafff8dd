// Package reader implements the Reader Session: one Transport, one
// dialect Codec, and one application CallbackSet, exposing the command
// operations (connect, inventory, read/write/lock/kill tag memory,
// reset, relay) and the receive-side frame dispatch the multiplexer
// drives.
package reader

import (
	"time"

	"github.com/imdario/mergo"

	"github.com/uhfreader/sdk/dialect"
)

// Config configures a Session before Connect. Any zero-valued field is
// filled in from DefaultConfig by mergo.Merge, the same
// resolve-then-merge-over-defaults pattern the reference SSH client
// session config uses.
type Config struct {
	Dialect dialect.Kind

	// RecvBufferSize and SendBufferSize override the spec-mandated
	// defaults (1024/128); present for tests that want a smaller
	// buffer to exercise overflow paths without huge fixtures.
	RecvBufferSize int
	SendBufferSize int

	// FaultRetryBackoff is not part of spec.md's core contract (no
	// reconnection policy is specified); it exists purely as a knob
	// example programs can read, defaulted to a sane value and never
	// consulted by the core Session/Multiplexer logic itself.
	FaultRetryBackoff time.Duration
}

// DefaultConfig is merged onto any Config passed to NewSession that
// leaves fields unset.
var DefaultConfig = Config{
	Dialect:           dialect.General,
	RecvBufferSize:    dialect.MaxRecvBuffer,
	SendBufferSize:    dialect.MaxSendBuffer,
	FaultRetryBackoff: 2 * time.Second,
}

// ResolveConfig merges cfg onto a copy of DefaultConfig.
func ResolveConfig(cfg Config) Config {
	resolved := cfg
	_ = mergo.Merge(&resolved, DefaultConfig)
	return resolved
}
