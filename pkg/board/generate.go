package board

// GenerateQuietMoves returns every quiet (non-capturing) move available to
// color c: one forward diagonal step for a man, any number of empty squares
// along a diagonal ray for a flying king.
func GenerateQuietMoves(pos *Position, c Color) []Move {
	var out []Move
	for s := ZeroSquare; s < NumSquares; s++ {
		piece := pos.At(s)
		if piece.IsEmpty() || piece.Color() != c {
			continue
		}
		if piece.IsMan() {
			for _, d := range ForwardDirections(c) {
				if to, ok := Adjacent(s, d); ok && pos.IsEmpty(to) {
					out = append(out, Move{Kind: Quiet, From: s, To: to})
				}
			}
		} else {
			for _, d := range Directions() {
				for _, to := range RayFrom(s, d) {
					if !pos.IsEmpty(to) {
						break
					}
					out = append(out, Move{Kind: Quiet, From: s, To: to})
				}
			}
		}
	}
	return out
}

// GenerateCaptures returns every maximal capture chain available to color c.
// Maximality is enforced (no emitted chain can be extended further from its
// terminal square) but "longest chain only" is not: every maximal chain is
// emitted and the search is left to choose among them, per the documented
// deviation from strict Russian tournament rules.
func GenerateCaptures(pos *Position, c Color) []Move {
	g := &captureGen{color: c}
	for s := ZeroSquare; s < NumSquares; s++ {
		piece := pos.At(s)
		if piece.IsEmpty() || piece.Color() != c {
			continue
		}
		g.work = pos.Clone()
		if piece.IsKing() {
			g.kingCapturesFrom(s, s, nil)
		} else {
			g.manCapturesFrom(s, s, 0, false, nil)
		}
	}
	return g.out
}

// GenerateAllMoves returns captures if any exist, else quiet moves -- captures
// are mandatory under Russian rules.
func GenerateAllMoves(pos *Position, c Color) []Move {
	if captures := GenerateCaptures(pos, c); len(captures) > 0 {
		return captures
	}
	return GenerateQuietMoves(pos, c)
}

// captureGen enumerates maximal capture chains for one starting piece by
// mutating a private working copy of the position in place and restoring it
// on every return path -- cloning the board per sub-jump would cost orders
// of magnitude in throughput.
type captureGen struct {
	work  *Position
	color Color
	out   []Move
}

func (g *captureGen) emit(origin Square, jumps []Jump) {
	cp := make([]Jump, len(jumps))
	copy(cp, jumps)
	g.out = append(g.out, Move{Kind: CaptureChain, From: origin, To: cp[len(cp)-1].To, Jumps: cp})
}

// manCapturesFrom explores single-square-over-opponent jumps, in any of the
// four diagonal directions (men capture backward as well as forward), from
// square "at". cameFrom/hasCameFrom exclude landing back on the square the
// piece departed on its immediately preceding jump -- the one trivial loop
// mandatory-capture chains can otherwise form.
func (g *captureGen) manCapturesFrom(origin, at Square, cameFrom Square, hasCameFrom bool, jumps []Jump) {
	extended := false
	for _, d := range Directions() {
		adj, ok := Adjacent(at, d)
		if !ok {
			continue
		}
		captured := g.work.At(adj)
		if captured.IsEmpty() || captured.Color() == g.color {
			continue
		}
		landing, ok := Adjacent(adj, d)
		if !ok || !g.work.IsEmpty(landing) {
			continue
		}
		if hasCameFrom && landing == cameFrom {
			continue
		}

		extended = true
		j := Jump{From: at, Captured: adj, To: landing}
		g.applyManJump(origin, at, j, jumps)
	}
	if !extended && len(jumps) > 0 {
		g.emit(origin, jumps)
	}
}

func (g *captureGen) applyManJump(origin, at Square, j Jump, jumps []Jump) {
	moving := g.work.At(at)
	captured := g.work.At(j.Captured)

	g.work.Set(at, Empty)
	g.work.Set(j.Captured, Empty)

	landingPiece := moving
	promotedNow := false
	if j.To.IsPromotionFor(g.color) {
		landingPiece = moving.Crowned()
		promotedNow = true
	}
	g.work.Set(j.To, landingPiece)

	next := make([]Jump, len(jumps)+1)
	copy(next, jumps)
	next[len(jumps)] = j

	if promotedNow {
		// A man crossing the promotion rank mid-chain becomes a king for the
		// remainder of the chain and continues under king capture rules.
		g.kingCapturesFrom(origin, j.To, next)
	} else {
		g.manCapturesFrom(origin, j.To, at, true, next)
	}

	g.work.Set(at, moving)
	g.work.Set(j.Captured, captured)
	g.work.Set(j.To, Empty)
}

type kingLanding struct {
	captured, to Square
}

// vacatedSquare reports whether s is a square the current chain has already
// departed. Such squares are empty on the working board, but a king may not
// reverse back through its own trail; every ray scan treats them as hard
// blockers.
func vacatedSquare(vacated []Square, s Square) bool {
	for _, v := range vacated {
		if v == s {
			return true
		}
	}
	return false
}

// raysCaptures scans every direction from "at" for a king capture: the first
// enemy piece along a ray, and every empty square beyond it up to (not
// including) the next occupied square. The scan stops dead at any square the
// chain has already vacated. Indexed by direction so iteration order stays
// deterministic for a fixed board.
func raysCaptures(pos *Position, color Color, at Square, vacated []Square) [4][]kingLanding {
	var found [4][]kingLanding
	for _, d := range Directions() {
		ray := RayFrom(at, d)
		for i, sq := range ray {
			if vacatedSquare(vacated, sq) {
				break
			}
			p := pos.At(sq)
			if p.IsEmpty() {
				continue
			}
			if p.Color() == color {
				break // own piece blocks the ray before any capture
			}
			var landings []kingLanding
			for _, to := range ray[i+1:] {
				if !pos.IsEmpty(to) || vacatedSquare(vacated, to) {
					break
				}
				landings = append(landings, kingLanding{captured: sq, to: to})
			}
			found[d] = landings
			break // only the first enemy piece along a ray is ever capturable
		}
	}
	return found
}

// hasKingContinuation reports whether landing on "to" (having just captured
// the piece on "excluding", still physically on the board at this shallow
// lookahead) would offer a further king capture. Squares in vacated end a
// ray the same way they do in raysCaptures. It does not recurse beyond
// one ply -- this shallow, pre-jump lookahead is exactly what the generator
// uses to decide which of several same-ray landings to prefer, and is the
// documented source of the "prefer continuation" subtlety: it may disagree
// with what a full recursive search finds once the jump is actually applied.
func hasKingContinuation(pos *Position, color Color, to, excluding Square, vacated []Square) bool {
	for _, d := range Directions() {
		ray := RayFrom(to, d)
		for i, sq := range ray {
			if vacatedSquare(vacated, sq) {
				break
			}
			p := pos.At(sq)
			if p.IsEmpty() {
				continue
			}
			if sq == excluding || p.Color() == color {
				break
			}
			if i+1 < len(ray) && pos.IsEmpty(ray[i+1]) {
				return true
			}
			break
		}
	}
	return false
}

// kingCapturesFrom explores flying-king capture chains from square "at". For
// each ray offering a capture, landings that themselves show a further
// capture (per hasKingContinuation) are preferred; only when none of a ray's
// landings show a continuation are all of that ray's landings kept as
// terminal candidates -- see the "prefer continuation" design note. The
// squares the chain has already departed (the From of every prior sub-jump)
// terminate every ray scan, so a king can never reverse through its own
// trail to reach a piece that was shielded by it -- the king-side
// counterpart of manCapturesFrom's cameFrom exclusion.
func (g *captureGen) kingCapturesFrom(origin, at Square, jumps []Jump) {
	vacated := make([]Square, len(jumps))
	for i, j := range jumps {
		vacated[i] = j.From
	}

	perRay := raysCaptures(g.work, g.color, at, vacated)

	var candidates []kingLanding
	for _, d := range Directions() {
		landings := perRay[d]
		if len(landings) == 0 {
			continue
		}
		var continuing []kingLanding
		for _, l := range landings {
			if hasKingContinuation(g.work, g.color, l.to, l.captured, vacated) {
				continuing = append(continuing, l)
			}
		}
		if len(continuing) > 0 {
			candidates = append(candidates, continuing...)
		} else {
			candidates = append(candidates, landings...)
		}
	}

	for _, cd := range candidates {
		j := Jump{From: at, Captured: cd.captured, To: cd.to}
		g.applyKingJump(origin, at, j, jumps)
	}
	if len(candidates) == 0 && len(jumps) > 0 {
		g.emit(origin, jumps)
	}
}

func (g *captureGen) applyKingJump(origin, at Square, j Jump, jumps []Jump) {
	moving := g.work.At(at)
	captured := g.work.At(j.Captured)

	g.work.Set(at, Empty)
	g.work.Set(j.Captured, Empty)
	g.work.Set(j.To, moving)

	next := make([]Jump, len(jumps)+1)
	copy(next, jumps)
	next[len(jumps)] = j

	g.kingCapturesFrom(origin, j.To, next)

	g.work.Set(at, moving)
	g.work.Set(j.Captured, captured)
	g.work.Set(j.To, Empty)
}
