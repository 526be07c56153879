package round

// SplitQuota divides total across lanes. Every lane gets total/lanes and the
// first total%lanes lanes get one more, so the parts always sum to total.
func SplitQuota(total, lanes int) []int {
	if lanes <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	base := total / lanes
	rem := total % lanes
	out := make([]int, lanes)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}
