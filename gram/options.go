package gram

import (
	"fmt"

	"github.com/arloliu/tally/internal/options"
)

// defaultTolerance is the relative singular-value cutoff for the numeric
// rank: values below tolerance times the largest singular value count as
// zero.
const defaultTolerance = 1e-9

// config carries the knobs of an Analyze call.
type config struct {
	outcome   string
	maxLen    int
	tolerance float64
}

// Option configures a Gram analysis.
type Option = options.Option[*config]

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{tolerance: defaultTolerance}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithOutcome designates the outcome label whose fractions fill the Gram
// matrix. The default is the dataset's first outcome label.
func WithOutcome(label string) Option {
	return options.NoError(func(c *config) {
		c.outcome = label
	})
}

// WithMaxBasisLength bounds the length of basis keys. Zero, the default,
// allows any length the stored keys support.
func WithMaxBasisLength(n int) Option {
	return options.NoError(func(c *config) {
		c.maxLen = n
	})
}

// WithTolerance sets the relative singular-value cutoff for the numeric
// rank. The tolerance must be positive.
func WithTolerance(tolerance float64) Option {
	return options.New(func(c *config) error {
		if tolerance <= 0 {
			return fmt.Errorf("tolerance must be positive, got %v", tolerance)
		}
		c.tolerance = tolerance

		return nil
	})
}
