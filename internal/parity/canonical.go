package parity

// Canonical returns the canonical test vectors for the qlknn_7_11 surrogate.
// Columns follow the model's input channel order (Ati, Ate, Ane, Ani, q,
// smag, x, Ti_Te, LogNuStar, normni). The same batches are hard-coded in the
// candidate implementations' test suites, so their names and contents are
// part of the fixture contract.
func Canonical() map[string]TestVector {
	return map[string]TestVector{
		"single_sample": {
			{5.0, 5.0, 1.0, 1.0, 2.0, 1.0, 0.3, 1.0, -10.0, 1.0},
		},
		"three_samples": {
			{5.0, 5.0, 1.0, 1.0, 2.0, 1.0, 0.3, 1.0, -10.0, 1.0},
			{6.0, 6.0, 1.5, 1.5, 2.5, 1.2, 0.35, 1.0, -9.5, 1.0},
			{7.0, 7.0, 2.0, 2.0, 3.0, 1.4, 0.4, 1.0, -9.0, 1.0},
		},
		"realistic_plasma": {
			{6.0, 6.0, 2.0, 2.0, 2.5, 1.5, 0.4, 1.2, -8.0, 1.0},
		},
		"batch_varying": {
			{2.0, 2.0, 1.0, 1.0, 1.5, 0.5, 0.2, 0.8, -12.0, 0.9},
			{5.0, 5.0, 2.0, 2.0, 2.0, 1.0, 0.3, 1.0, -10.0, 1.0},
			{10.0, 10.0, 3.0, 3.0, 2.5, 1.5, 0.4, 1.2, -8.0, 1.0},
			{15.0, 15.0, 4.0, 4.0, 3.0, 2.0, 0.5, 1.5, -6.0, 1.0},
			{20.0, 20.0, 5.0, 5.0, 3.5, 2.5, 0.6, 2.0, -4.0, 0.95},
		},
	}
}
