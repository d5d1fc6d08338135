// Package team organizes a match's stat records into two sides and resolves
// the winner.
package team

import (
	"fmt"

	"github.com/openfrag/agmmr/internal/domain/model"
)

// Side is an ordered group of stat records sharing one side tag.
type Side struct {
	Tag     string
	Records []*model.MatchStatRecord
}

// Size returns the number of players on the side.
func (s Side) Size() int { return len(s.Records) }

// TotalFrags sums the side's frag counts.
func (s Side) TotalFrags() int {
	total := 0
	for _, r := range s.Records {
		total += r.Frags
	}
	return total
}

// Organize splits records into two sides keyed by their side tag. Sides keep
// roster order and are returned in tag first-appearance order, which makes
// downstream tie-breaking deterministic for a given submission.
// Returns ErrInvalidTeamComposition when the records do not form exactly two
// non-empty sides of equal size.
func Organize(records []*model.MatchStatRecord) (Side, Side, error) {
	var sides []Side
	index := make(map[string]int)

	for _, r := range records {
		i, ok := index[r.Side]
		if !ok {
			if len(sides) == 2 {
				return Side{}, Side{}, fmt.Errorf("%w: more than two side tags", ErrInvalidTeamComposition)
			}
			index[r.Side] = len(sides)
			sides = append(sides, Side{Tag: r.Side})
			i = len(sides) - 1
		}
		sides[i].Records = append(sides[i].Records, r)
	}

	if len(sides) != 2 {
		return Side{}, Side{}, fmt.Errorf("%w: got %d side tags, want 2", ErrInvalidTeamComposition, len(sides))
	}
	if sides[0].Size() == 0 || sides[1].Size() == 0 {
		return Side{}, Side{}, fmt.Errorf("%w: empty side", ErrInvalidTeamComposition)
	}
	if sides[0].Size() != sides[1].Size() {
		return Side{}, Side{}, fmt.Errorf("%w: side sizes %d and %d differ",
			ErrInvalidTeamComposition, sides[0].Size(), sides[1].Size())
	}

	return sides[0], sides[1], nil
}

// ResolveWinner returns the index (0 for a, 1 for b) of the winning side by
// total frags. Ties resolve to side b, the second-organized side.
func ResolveWinner(a, b Side) int {
	if a.TotalFrags() > b.TotalFrags() {
		return 0
	}
	return 1
}
