package layout

import "hash/fnv"

// Seed derives a deterministic simulation seed from a token address and
// chain identifier. Distinct tokens get visually distinct layouts while
// repeated requests for the same token reproduce the same one.
func Seed(token, chain string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(chain))
	h.Write([]byte{'|'})
	h.Write([]byte(token))
	return h.Sum64()
}
