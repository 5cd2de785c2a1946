package prover

// Flatten concatenates a list of lists.
func Flatten[T any](seq [][]T) []T {
	n := 0
	for _, s := range seq {
		n += len(s)
	}
	out := make([]T, 0, n)
	for _, s := range seq {
		out = append(out, s...)
	}
	return out
}

// Find returns the first item matching f.
func Find[T any](f func(T) bool, seq []T) (T, bool) {
	for _, item := range seq {
		if f(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// RemoveDuplicate keeps the first item of each equivalence class, in input
// order. eq must be an equivalence relation.
func RemoveDuplicate[T any](eq func(a, b T) bool, seq []T) []T {
	out := make([]T, 0, len(seq))
outer:
	for _, item := range seq {
		for _, kept := range out {
			if eq(item, kept) {
				continue outer
			}
		}
		out = append(out, item)
	}
	return out
}

// RemoveDuplicateBy is RemoveDuplicate for equivalence given by a key.
func RemoveDuplicateBy[T any, K comparable](key func(T) K, seq []T) []T {
	seen := make(map[K]struct{}, len(seq))
	out := make([]T, 0, len(seq))
	for _, item := range seq {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// MergeTheoremLists merges two theorem lists, keeping one theorem per result.
// Theorems in a win over theorems in b that reach the same result.
func MergeTheoremLists[F comparable](a, b []Theorem[F]) []Theorem[F] {
	all := make([]Theorem[F], 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return RemoveDuplicateBy(Theorem[F].Result, all)
}
