package gram

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
)

// Result holds the outcome of a Gram analysis.
type Result struct {
	// Basis is the maximal basis the analysis settled on, in admission order.
	Basis []dataset.Key
	// Outcome is the outcome label whose fractions filled the matrix.
	Outcome string
	// Matrix is the Gram matrix over the basis.
	Matrix *mat.Dense
	// Singular holds the singular values in descending order.
	Singular []float64
	// Rank is the numeric rank: singular values above Tolerance times the
	// largest one.
	Rank int
	// Tolerance is the relative cutoff Rank was computed with.
	Tolerance float64
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("Result{Rank: %d, Basis: %d keys, Outcome: %s}",
		r.Rank, len(r.Basis), r.Outcome)
}

// Analyze computes the maximal-basis Gram matrix of a dataset and its
// singular spectrum.
//
// A nil or empty labels slice derives the operation labels from the stored
// keys. The designated outcome defaults to the dataset's first outcome
// label; WithOutcome overrides it.
//
// Parameters:
//   - ds: Dataset to analyze; works on building and frozen datasets alike
//   - labels: Operation labels basis keys may use, or nil to derive them
//   - opts: Analysis options (WithOutcome, WithMaxBasisLength, WithTolerance)
//
// Returns:
//   - *Result: Basis, matrix, singular spectrum and numeric rank
//   - error: Analysis error if any
//
// Example:
//
//	result, err := gram.Analyze(ds, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Gram rank: %d\n", result.Rank)
func Analyze(ds *dataset.DataSet, labels []string, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	if ds.Len() == 0 {
		return nil, errors.New("dataset has no keys")
	}

	outcome := cfg.outcome
	if outcome == "" {
		outcome = ds.Outcomes()[0]
	} else if !slices.Contains(ds.Outcomes(), outcome) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownOutcome, outcome)
	}

	if len(labels) == 0 {
		labels = ds.OperationLabels()
	}

	basis := MaxBasis(ds, labels, cfg.maxLen)
	if len(basis) == 0 {
		return nil, errors.New("no basis keys available for a Gram matrix")
	}

	matrix, err := Matrix(ds, basis, outcome)
	if err != nil {
		return nil, err
	}

	singular, err := singularValues(matrix)
	if err != nil {
		return nil, err
	}

	return &Result{
		Basis:     basis,
		Outcome:   outcome,
		Matrix:    matrix,
		Singular:  singular,
		Rank:      numericRank(singular, cfg.tolerance),
		Tolerance: cfg.tolerance,
	}, nil
}

// singularValues factorizes the matrix and returns its singular values in
// descending order.
func singularValues(m *mat.Dense) ([]float64, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return nil, errors.New("singular value decomposition failed to converge")
	}

	return svd.Values(nil), nil
}

// numericRank counts the singular values above tolerance times the largest
// one. An all-zero spectrum has rank 0.
func numericRank(singular []float64, tolerance float64) int {
	if len(singular) == 0 || singular[0] == 0 {
		return 0
	}

	cutoff := tolerance * singular[0]
	rank := 0
	for _, v := range singular {
		if v > cutoff {
			rank++
		}
	}

	return rank
}
