// Package gram provides Gram-matrix rank diagnostics over datasets.
//
// The Gram matrix of a dataset is built from a basis of key sequences
// {S_1, ..., S_n}: entry (i, j) is the observed fraction of a designated
// outcome for the concatenated key S_i S_j. Its numeric rank bounds the
// dimension of the state space the recorded experiment can resolve, so a
// rank deficit is an early signal that the experiment design is incomplete
// or the data degenerate.
//
// # Basic Analysis
//
// Analyze picks a maximal basis automatically and reports the singular
// spectrum and rank:
//
//	result, err := gram.Analyze(ds, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("rank %d of %d\n", result.Rank, len(result.Basis))
//
// Passing nil labels derives the operation labels from the dataset's own
// keys. Options select the outcome, bound the basis length, and adjust the
// rank tolerance:
//
//	result, err := gram.Analyze(ds, []string{"Gx", "Gy"},
//	    gram.WithOutcome("plus"),
//	    gram.WithMaxBasisLength(2),
//	)
//
// # Manual Basis Control
//
// MaxBasis and Matrix expose the two halves of the computation for callers
// that want to inspect or override the basis:
//
//	basis := gram.MaxBasis(ds, []string{"Gx", "Gy"}, 0)
//	m, err := gram.Matrix(ds, basis, "plus")
//
// The basis admission is greedy over candidates ordered shortest first, so
// the result is a maximal set, not necessarily a maximum one.
package gram
