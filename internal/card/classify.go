package card

import "sort"

// Type enumerates the legal play shapes. Invalid is the zero value so an
// unclassified Hand is never mistaken for a playable one.
type Type int

const (
	Invalid Type = iota
	Single
	Pair
	Trio
	TrioSingle
	TrioPair
	Straight
	PairStraight
	Plane
	PlaneSingles
	PlanePairs
	Bomb
	Rocket
)

var typeNames = map[Type]string{
	Invalid:      "invalid",
	Single:       "single",
	Pair:         "pair",
	Trio:         "trio",
	TrioSingle:   "trio_single",
	TrioPair:     "trio_pair",
	Straight:     "straight",
	PairStraight: "pair_straight",
	Plane:        "plane",
	PlaneSingles: "plane_singles",
	PlanePairs:   "plane_pairs",
	Bomb:         "bomb",
	Rocket:       "rocket",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "invalid"
}

// Hand is the classification of a card multiset.
type Hand struct {
	Type Type
	// Chain is the run length for straight/pair-straight/plane shapes, 1 otherwise.
	Chain int
	// Lead is the order of the defining card: the card itself for singles and
	// pairs, the trio/bomb rank, or the lowest rank of a run/plane core.
	Lead int
	// Size is the number of cards in the play.
	Size int
}

// Classify maps a card multiset to exactly one Type, or Invalid. Input order
// is irrelevant and the slice is not modified.
func Classify(cards []Card) Hand {
	n := len(cards)
	if n == 0 || n > DeckSize {
		return Hand{}
	}

	counts := make(map[int]int, n)
	for _, c := range cards {
		if !c.Valid() {
			return Hand{}
		}
		counts[c.Order()]++
	}
	// A single physical deck cannot repeat a card; more than four of a rank
	// (or two of a joker) means the input is corrupt.
	for o, k := range counts {
		if k > 4 || (o > maxRunOrder+1 && k > 1) {
			return Hand{}
		}
	}

	orders := make([]int, 0, len(counts))
	for o := range counts {
		orders = append(orders, o)
	}
	sort.Ints(orders)

	switch n {
	case 1:
		return Hand{Type: Single, Chain: 1, Lead: orders[0], Size: 1}
	case 2:
		if counts[SmallJoker.Order()] == 1 && counts[BigJoker.Order()] == 1 {
			return Hand{Type: Rocket, Chain: 1, Lead: BigJoker.Order(), Size: 2}
		}
		if len(orders) == 1 {
			return Hand{Type: Pair, Chain: 1, Lead: orders[0], Size: 2}
		}
		return Hand{}
	case 3:
		if len(orders) == 1 {
			return Hand{Type: Trio, Chain: 1, Lead: orders[0], Size: 3}
		}
		return Hand{}
	case 4:
		if len(orders) == 1 {
			return Hand{Type: Bomb, Chain: 1, Lead: orders[0], Size: 4}
		}
		if trio := soleOrderWithCount(counts, 3); trio != 0 {
			return Hand{Type: TrioSingle, Chain: 1, Lead: trio, Size: 4}
		}
		return Hand{}
	case 5:
		if trio := soleOrderWithCount(counts, 3); trio != 0 && len(orders) == 2 {
			other := orders[0]
			if other == trio {
				other = orders[1]
			}
			if counts[other] == 2 {
				return Hand{Type: TrioPair, Chain: 1, Lead: trio, Size: 5}
			}
		}
	}

	if h, ok := classifyRun(orders, counts, n); ok {
		return h
	}
	if h, ok := classifyPlaneWithKickers(orders, counts, n); ok {
		return h
	}
	return Hand{}
}

// classifyRun recognizes the uniform chains: Straight, PairStraight and Plane,
// where every rank in a consecutive run below 2 appears the same number of times.
func classifyRun(orders []int, counts map[int]int, n int) (Hand, bool) {
	if !consecutive(orders) || orders[len(orders)-1] > maxRunOrder {
		return Hand{}, false
	}
	mult := counts[orders[0]]
	for _, o := range orders {
		if counts[o] != mult {
			return Hand{}, false
		}
	}
	chain := len(orders)
	switch {
	case mult == 1 && chain >= 5:
		return Hand{Type: Straight, Chain: chain, Lead: orders[0], Size: n}, true
	case mult == 2 && chain >= 3:
		return Hand{Type: PairStraight, Chain: chain, Lead: orders[0], Size: n}, true
	case mult == 3 && chain >= 2:
		return Hand{Type: Plane, Chain: chain, Lead: orders[0], Size: n}, true
	}
	return Hand{}, false
}

// classifyPlaneWithKickers recognizes Plane(k) cores carrying exactly k single
// or k pair kickers. The core is a run of ranks appearing exactly three times;
// when several runs would fit, the highest one is taken.
func classifyPlaneWithKickers(orders []int, counts map[int]int, n int) (Hand, bool) {
	try := func(k int, wantPairs bool) (Hand, bool) {
		if k < 2 {
			return Hand{}, false
		}
		best := 0
		for _, low := range orders {
			if low+k-1 > maxRunOrder {
				continue
			}
			ok := true
			for o := low; o < low+k; o++ {
				if counts[o] != 3 {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			if wantPairs && !kickersArePairs(counts, low, k) {
				continue
			}
			best = low
		}
		if best == 0 {
			return Hand{}, false
		}
		t := PlaneSingles
		size := 4 * k
		if wantPairs {
			t = PlanePairs
			size = 5 * k
		}
		return Hand{Type: t, Chain: k, Lead: best, Size: size}, true
	}

	if n%4 == 0 {
		if h, ok := try(n/4, false); ok {
			return h, true
		}
	}
	if n%5 == 0 {
		if h, ok := try(n/5, true); ok {
			return h, true
		}
	}
	return Hand{}, false
}

// kickersArePairs checks that every rank outside the core [low, low+k) occurs
// exactly twice.
func kickersArePairs(counts map[int]int, low, k int) bool {
	for o, c := range counts {
		if o >= low && o < low+k {
			continue
		}
		if c != 2 {
			return false
		}
	}
	return true
}

// soleOrderWithCount returns the unique order occurring exactly c times, or 0.
func soleOrderWithCount(counts map[int]int, c int) int {
	found := 0
	for o, k := range counts {
		if k == c {
			if found != 0 {
				return 0
			}
			found = o
		}
	}
	return found
}

func consecutive(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}
