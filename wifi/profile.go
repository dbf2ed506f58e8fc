package wifi

import "strings"

// BestProfile selects the saved profile to reuse for an SSID. Candidates are
// profiles whose name matches the SSID exactly or starts with it. The most
// recent LastUsed timestamp wins; on a tie the exact-name match is preferred.
// Returns nil when no candidate exists.
func BestProfile(profiles []NetworkProfile, ssid string) *NetworkProfile {
	var best *NetworkProfile
	for i := range profiles {
		p := &profiles[i]
		if p.Name != ssid && !strings.HasPrefix(p.Name, ssid) {
			continue
		}
		if best == nil || lastUsedAfter(p, best) || (!lastUsedAfter(best, p) && p.Name == ssid) {
			best = p
		}
	}
	return best
}

// lastUsedAfter reports whether a was used more recently than b. A profile
// with no timestamp is treated as never used.
func lastUsedAfter(a, b *NetworkProfile) bool {
	if a.LastUsed == nil {
		return false
	}
	if b.LastUsed == nil {
		return true
	}
	return a.LastUsed.After(*b.LastUsed)
}
