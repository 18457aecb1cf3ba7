package gram

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/tally/dataset"
)

// MaxBasis computes a maximal set of basis keys for a Gram matrix: a set
// {S_i} such that every concatenation S_i S_j is a key of the dataset.
//
// Candidates are the prefixes of stored keys built purely from the given
// labels, scanned shortest first. A candidate is admitted when all its
// products with the basis admitted so far, itself included, are present.
// The scan is greedy, so the set is maximal rather than maximum.
//
// Parameters:
//   - ds: Dataset supplying the keys
//   - labels: Operation labels basis keys may use
//   - maxLen: Upper bound on basis key length; 0 means no bound
//
// Returns:
//   - []dataset.Key: Basis keys in admission order; empty when no single
//     key qualifies
func MaxBasis(ds *dataset.DataSet, labels []string, maxLen int) []dataset.Key {
	candidates := basisCandidates(ds, labels, maxLen)

	var basis []dataset.Key
	for _, candidate := range candidates {
		admissible := ds.Contains(candidate.Concat(candidate))
		for _, other := range basis {
			if !admissible {
				break
			}
			admissible = ds.Contains(candidate.Concat(other)) && ds.Contains(other.Concat(candidate))
		}
		if admissible {
			basis = append(basis, candidate)
		}
	}

	return basis
}

// basisCandidates lists the distinct non-empty prefixes of the stored keys
// that use only the given labels, ordered by length and then by the labels'
// positions in the labels slice. Any valid basis key must concatenate with
// itself into a stored key, so prefixes cover all viable candidates.
func basisCandidates(ds *dataset.DataSet, labels []string, maxLen int) []dataset.Key {
	labelRank := make(map[string]int, len(labels))
	for i, label := range labels {
		labelRank[label] = i
	}

	seen := make(map[string]struct{})
	var candidates []dataset.Key
	for key := range ds.Keys() {
		prefix := make([]string, 0, key.Len())
		for i := 0; i < key.Len(); i++ {
			label, _ := key.At(i)
			if _, known := labelRank[label]; !known {
				break
			}
			prefix = append(prefix, label)
			if maxLen > 0 && len(prefix) > maxLen {
				break
			}

			candidate := dataset.NewKey(prefix...)
			canon := candidate.Canon()
			if _, dup := seen[canon]; dup {
				continue
			}
			seen[canon] = struct{}{}
			candidates = append(candidates, candidate)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Len() != b.Len() {
			return a.Len() < b.Len()
		}
		for pos := 0; pos < a.Len(); pos++ {
			la, _ := a.At(pos)
			lb, _ := b.At(pos)
			if la != lb {
				return labelRank[la] < labelRank[lb]
			}
		}

		return false
	})

	return candidates
}

// Matrix fills the Gram matrix for an explicit basis: entry (i, j) is the
// fraction of the designated outcome observed for basis[i] followed by
// basis[j]. Every product key must be present with a nonzero total.
//
// Returns:
//   - *mat.Dense: Square matrix of outcome fractions
//   - error: errs.ErrKeyNotFound for a missing product key,
//     errs.ErrUnknownOutcome or errs.ErrZeroTotal from the fraction lookup
func Matrix(ds *dataset.DataSet, basis []dataset.Key, outcome string) (*mat.Dense, error) {
	if len(basis) == 0 {
		return nil, errors.New("empty basis")
	}

	n := len(basis)
	m := mat.NewDense(n, n, nil)
	for i, prefix := range basis {
		for j, suffix := range basis {
			product := prefix.Concat(suffix)
			row, err := ds.Lookup(product)
			if err != nil {
				return nil, fmt.Errorf("product %s: %w", product, err)
			}
			fraction, err := row.Fraction(outcome)
			if err != nil {
				return nil, err
			}
			m.Set(i, j, fraction)
		}
	}

	return m, nil
}
