package evkv

import "github.com/sirupsen/logrus"

// Config holds constructor-time server tuning. spec.md §6 fixes the
// external interface (address, no env vars); Config only covers knobs
// that stay inside the process, primarily so tests can bind an ephemeral
// loopback port instead of the fixed production one.
type Config struct {
	ListenAddr string
	Logger     *logrus.Logger
	MaxFrame   int
	MaxArgs    int
	bufPool    *bytePool
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr: "0.0.0.0:1234",
		Logger:     newDefaultLogger(),
		MaxFrame:   MaxFrame,
		MaxArgs:    MaxArgs,
		bufPool:    defaultBytePool(),
	}
}

// Option configures a Server at construction time.
type Option func(*Config)

// WithListenAddr overrides the listen address. Defaults to "0.0.0.0:1234"
// per spec.md §6.
func WithListenAddr(addr string) Option {
	return func(c *Config) { c.ListenAddr = addr }
}

// WithLogger overrides the logger used for connection lifecycle and
// protocol-violation diagnostics. Defaults to the logger built by
// newDefaultLogger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMaxFrame overrides the maximum accepted frame payload size. It is
// clamped to the protocol ceiling of 32 MiB (MaxFrame); values above that
// would violate spec.md §4.2 for any client that assumes the protocol
// ceiling.
func WithMaxFrame(n int) Option {
	return func(c *Config) {
		if n > MaxFrame || n <= 0 {
			n = MaxFrame
		}
		c.MaxFrame = n
	}
}

// WithMaxArgs overrides the maximum accepted request argument count,
// clamped to the protocol ceiling of 200000 (MaxArgs).
func WithMaxArgs(n int) Option {
	return func(c *Config) {
		if n > MaxArgs || n <= 0 {
			n = MaxArgs
		}
		c.MaxArgs = n
	}
}
