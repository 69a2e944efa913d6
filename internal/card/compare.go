package card

// Beats reports whether hand h may be played over prev in an open trick.
// A Rocket beats everything else, a Bomb beats any non-bomb and any lower
// Bomb, and otherwise the hands must share type, chain length and size, with
// the higher lead winning. Mismatched shapes are never a beat; Beats(x, x)
// is always false.
func Beats(h, prev Hand) bool {
	if h.Type == Invalid || prev.Type == Invalid {
		return false
	}
	if h.Type == Rocket {
		return prev.Type != Rocket
	}
	if prev.Type == Rocket {
		return false
	}
	if h.Type == Bomb {
		if prev.Type == Bomb {
			return h.Lead > prev.Lead
		}
		return true
	}
	if prev.Type == Bomb {
		return false
	}
	if h.Type != prev.Type || h.Chain != prev.Chain || h.Size != prev.Size {
		return false
	}
	return h.Lead > prev.Lead
}
