package shared

// Direction is the signed index offset of a single step on the board.
type Direction int

const (
	Top         Direction = FileCount
	Bottom      Direction = -FileCount
	Left        Direction = -1
	Right       Direction = 1
	TopLeft     Direction = Top + Left
	TopRight    Direction = Top + Right
	BottomLeft  Direction = Bottom + Left
	BottomRight Direction = Bottom + Right
)

var (
	OrthogonalDirections = [...]Direction{Top, Right, Bottom, Left}
	DiagonalDirections   = [...]Direction{TopLeft, TopRight, BottomRight, BottomLeft}
	AllDirections        = [...]Direction{Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left, TopLeft}
)

func (d Direction) IsOrthogonal() bool {
	return d == Top || d == Bottom || d == Left || d == Right
}

func (d Direction) IsDiagonal() bool {
	return d == TopLeft || d == TopRight || d == BottomLeft || d == BottomRight
}

func (d Direction) Opposite() Direction { return -d }

func (d Direction) String() string {
	switch d {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return "none"
	}
}

func directionFromSteps(df, dr int) (Direction, bool) {
	switch {
	case df == 0 && dr == 1:
		return Top, true
	case df == 0 && dr == -1:
		return Bottom, true
	case df == -1 && dr == 0:
		return Left, true
	case df == 1 && dr == 0:
		return Right, true
	case df == -1 && dr == 1:
		return TopLeft, true
	case df == 1 && dr == 1:
		return TopRight, true
	case df == -1 && dr == -1:
		return BottomLeft, true
	case df == 1 && dr == -1:
		return BottomRight, true
	default:
		return 0, false
	}
}

func InRange(idx int) bool { return idx >= 0 && idx <= MaxSquare }

func InRangeCoords(file, rank int) bool {
	return file >= 0 && file <= MaxFile && rank >= 0 && rank <= MaxRank
}

func SquareFromCoords(file, rank int) (Square, bool) {
	if !InRangeCoords(file, rank) {
		return 0, false
	}
	return Square(rank*FileCount + file), true
}

func FileDelta(a, b Square) int { return b.File() - a.File() }
func RankDelta(a, b Square) int { return b.Rank() - a.Rank() }

func FileDiff(a, b Square) int { return abs(FileDelta(a, b)) }
func RankDiff(a, b Square) int { return abs(RankDelta(a, b)) }

// Adjacent reports whether b is one king step away from a (or equal to it).
func Adjacent(a, b Square) bool {
	return FileDiff(a, b) <= 1 && RankDiff(a, b) <= 1
}

// TryStep moves one square in direction d. Index arithmetic alone wraps
// around the board edges, so the target must also be adjacent to sq.
func TryStep(sq Square, d Direction) (Square, bool) {
	next := int(sq) + int(d)
	if !InRange(next) {
		return 0, false
	}
	target := Square(next)
	if !Adjacent(sq, target) {
		return 0, false
	}
	return target, true
}

// OffsetBetween returns the unit direction and the step count from a to b
// when both squares share a rank, file or diagonal.
func OffsetBetween(a, b Square) (Direction, int, bool) {
	if a == b {
		return 0, 0, false
	}
	df, dr := FileDelta(a, b), RankDelta(a, b)
	if df != 0 && dr != 0 && abs(df) != abs(dr) {
		return 0, 0, false
	}
	d, ok := directionFromSteps(sign(df), sign(dr))
	if !ok {
		return 0, 0, false
	}
	return d, max(abs(df), abs(dr)), true
}

// BoundarySquare walks from sq in direction d to the last in-range square.
func BoundarySquare(sq Square, d Direction) Square {
	cur := sq
	for {
		next, ok := TryStep(cur, d)
		if !ok {
			return cur
		}
		cur = next
	}
}

// Ray lists the squares from sq (exclusive) to the board edge in direction d.
func Ray(sq Square, d Direction) []Square {
	var out []Square
	cur := sq
	for {
		next, ok := TryStep(cur, d)
		if !ok {
			return out
		}
		out = append(out, next)
		cur = next
	}
}

// SquaresBetween lists the squares on the line from a to b. The endpoints
// are included only when requested. It fails when a and b are equal or do
// not share a line.
func SquaresBetween(a, b Square, includeA, includeB bool) ([]Square, bool) {
	d, dist, ok := OffsetBetween(a, b)
	if !ok {
		return nil, false
	}
	squares := make([]Square, 0, dist+1)
	if includeA {
		squares = append(squares, a)
	}
	cur := a
	for i := 1; i < dist; i++ {
		cur = Square(int(cur) + int(d))
		squares = append(squares, cur)
	}
	if includeB {
		squares = append(squares, b)
	}
	return squares, true
}

var knightSteps = [...][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var knightOffsets = [...]int{17, 10, -6, -15, -17, -10, 6, 15}

// KnightTargets returns the in-board knight jumps from sq. Targets are
// computed from index offsets and rejected when the file distance shows
// the jump wrapped around an edge.
func KnightTargets(sq Square) []Square {
	out := make([]Square, 0, len(knightOffsets))
	for i, off := range knightOffsets {
		next := int(sq) + off
		if !InRange(next) {
			continue
		}
		target := Square(next)
		fd, rd := FileDiff(sq, target), RankDiff(sq, target)
		if fd > 2 || fd+rd != 3 {
			continue
		}
		if fd != abs(knightSteps[i][0]) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
