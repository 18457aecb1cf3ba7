package codec

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/internal/options"
)

// config carries the knobs shared by the codec entry points. Each operation
// reads the fields it cares about and ignores the rest.
type config struct {
	logger      *slog.Logger
	columns     []format.Column
	compression format.CompressionType
	policy      format.CollisionPolicy
	bigEndian   bool
}

// Option configures a codec read or write operation.
type Option = options.Option[*config]

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{
		logger:      discardLogger,
		compression: format.CompressionNone,
		policy:      format.CollisionOverwrite,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger injects a logger for codec diagnostics. The codec logs at debug
// level only; nil restores the default silent logger.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger == nil {
			logger = discardLogger
		}
		c.logger = logger
	})
}

// WithColumns overrides the column layout the text writer emits. Without it
// the writer uses the dataset's own column annotation, falling back to plain
// count columns named after the outcome labels.
func WithColumns(columns []format.Column) Option {
	return options.NoError(func(c *config) {
		c.columns = columns
	})
}

// WithCompression selects the compression applied to the counts payload of a
// binary snapshot. The default is format.CompressionNone. Whole-file
// compression of the File variants is independent of this and chosen by the
// path suffix.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.GetCodec(compression); err != nil {
			return err
		}
		c.compression = compression

		return nil
	})
}

// WithCollisionPolicy selects the collision policy of datasets built by the
// text reader. The default is format.CollisionOverwrite. Binary snapshots
// restore their stored policy and ignore this option.
func WithCollisionPolicy(policy format.CollisionPolicy) Option {
	return options.New(func(c *config) error {
		if !policy.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrBadPolicy, uint8(policy))
		}
		c.policy = policy

		return nil
	})
}

// WithBigEndian writes binary snapshot bodies in big-endian byte order.
func WithBigEndian() Option {
	return options.NoError(func(c *config) {
		c.bigEndian = true
	})
}

// WithLittleEndian writes binary snapshot bodies in little-endian byte
// order, the default.
func WithLittleEndian() Option {
	return options.NoError(func(c *config) {
		c.bigEndian = false
	})
}

// engine returns the endian engine matching the configured byte order.
func (c *config) engine() endian.EndianEngine {
	if c.bigEndian {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}
