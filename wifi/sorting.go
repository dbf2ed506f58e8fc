package wifi

import "sort"

// SortScanResults orders scan results by descending signal strength. The
// sort is stable, so networks with equal strength keep their first-seen
// order.
func SortScanResults(results []ScanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Strength > results[j].Strength
	})
}

// DedupeScanResults collapses duplicate SSIDs, keeping the strongest entry
// for each. First-seen order is preserved for the survivors.
func DedupeScanResults(results []ScanResult) []ScanResult {
	index := make(map[string]int)
	out := results[:0]
	for _, r := range results {
		if i, seen := index[r.SSID]; seen {
			if r.Strength > out[i].Strength {
				out[i].Strength = r.Strength
				out[i].Security = r.Security
			}
			continue
		}
		index[r.SSID] = len(out)
		out = append(out, r)
	}
	return out
}
