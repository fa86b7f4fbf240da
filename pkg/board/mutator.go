package board

// Do applies m to b in place: a quiet step or an ordered capture chain. It
// populates m's undo-state fields (captured pieces, promotion point, and the
// previous key/prev-move pair) so that the paired Undo can restore b
// bit-identically. After Do, side to move is flipped and the Zobrist key is
// recomputed by full rehash (the simplest correct contract; an incremental
// XOR-in/XOR-out is an equivalent optimization this implementation does not
// take).
func Do(b *Board, m *Move) {
	pos := b.pos
	turn := b.turn

	m.prevKey = b.key
	m.prevFrom = b.prevFrom
	m.prevTo = b.prevTo
	m.promoted = false
	m.promotedAt = -1

	if m.Kind == Quiet {
		piece := pos.At(m.From)
		pos.Set(m.From, Empty)
		if piece.IsMan() && m.To.IsPromotionFor(turn) {
			piece = piece.Crowned()
			m.promoted = true
		}
		pos.Set(m.To, piece)
		m.captured = nil
	} else {
		m.captured = make([]Piece, len(m.Jumps))
		piece := pos.At(m.From)
		for i, j := range m.Jumps {
			m.captured[i] = pos.At(j.Captured)
			pos.Set(j.From, Empty)
			pos.Set(j.Captured, Empty)
			if piece.IsMan() && j.To.IsPromotionFor(turn) {
				piece = piece.Crowned()
				m.promoted = true
				m.promotedAt = i
			}
			pos.Set(j.To, piece)
		}
	}

	b.turn = turn.Opponent()
	b.key = b.zt.Hash(pos, b.turn)
	b.prevFrom = m.From
	b.prevTo = m.To
}

// Undo reverses a prior Do of m against b, restoring board, key, side to
// move and (prev_from, prev_to) to their pre-Do values bit-identically. m
// must be the exact Move value Do was called with (it carries the undo
// state); calling Undo with any other move value is undefined.
func Undo(b *Board, m *Move) {
	pos := b.pos

	if m.Kind == Quiet {
		piece := pos.At(m.To)
		if m.promoted {
			piece = piece.Demoted()
		}
		pos.Set(m.To, Empty)
		pos.Set(m.From, piece)
	} else {
		piece := pos.At(m.To)
		for i := len(m.Jumps) - 1; i >= 0; i-- {
			j := m.Jumps[i]
			if m.promoted && i == m.promotedAt {
				piece = piece.Demoted()
			}
			pos.Set(j.To, Empty)
			pos.Set(j.Captured, m.captured[i])
			pos.Set(j.From, piece)
		}
	}

	b.turn = b.turn.Opponent()
	b.key = m.prevKey
	b.prevFrom = m.prevFrom
	b.prevTo = m.prevTo
}
