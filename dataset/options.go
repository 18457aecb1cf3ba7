package dataset

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/internal/options"
)

// Option configures a DataSet at construction time.
type Option = options.Option[*DataSet]

// GroupOption configures a Group at construction time.
type GroupOption = options.Option[*Group]

// discardLogger swallows diagnostics when the caller injects no logger.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithCollisionPolicy selects what happens when a key is inserted a second
// time. The default is format.CollisionOverwrite.
func WithCollisionPolicy(policy format.CollisionPolicy) Option {
	return options.New(func(d *DataSet) error {
		if !policy.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrBadPolicy, uint8(policy))
		}
		d.policy = policy

		return nil
	})
}

// WithLogger injects a logger for diagnostic messages. The dataset logs at
// debug level only; nil restores the default silent logger.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(d *DataSet) {
		if logger == nil {
			logger = discardLogger
		}
		d.logger = logger
	})
}

// WithColumns annotates the dataset with the column layout it was built or
// loaded with. The text writer uses the annotation as its default header;
// nil means plain count columns named after the outcome labels.
func WithColumns(columns []format.Column) Option {
	return options.NoError(func(d *DataSet) {
		d.setColumns(columns)
	})
}

// WithGroupLogger injects a logger for group diagnostics, mirroring
// WithLogger.
func WithGroupLogger(logger *slog.Logger) GroupOption {
	return options.NoError(func(g *Group) {
		if logger == nil {
			logger = discardLogger
		}
		g.logger = logger
	})
}
