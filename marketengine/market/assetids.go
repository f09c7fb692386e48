package market

import "sort"

// ValidateAssetIDs checks the shared listing rules for asset id lists:
// non-empty and free of duplicates.
func ValidateAssetIDs(ids []int64) error {
	if len(ids) == 0 {
		return ErrValidation("asset_ids needs to contain at least one id")
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return ErrValidation("The asset_ids must not contain duplicates")
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SameAssetSet reports whether two id lists contain exactly the same ids,
// regardless of order.
func SameAssetSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int64(nil), a...)
	bs := append([]int64(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
