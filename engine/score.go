package engine

// Search depth is measured in fractions of a ply so extensions and
// reductions can be finer than whole plies.
const (
	DepthFactor = 6
	MaxQDepth   = 6

	// MaxPly bounds the recursion of one search line, MaxDepth the nominal
	// iterative deepening depth.
	MaxPly   = 64
	MaxDepth = 40
)

const (
	cutoff          = DepthFactor + MaxQDepth + 1
	lmrMinDepth     = cutoff + DepthFactor*2
	nullVerifyDepth = cutoff + DepthFactor*5
	nullReduction   = 3

	checkExtension     = DepthFactor
	pawnPushExtension  = DepthFactor
	recaptureExtension = DepthFactor

	deltaMargin = 50
)

var (
	razorMargins    = [...]int{220, 250, 290}
	futilityMargins = [...]int{110, 130, 170, 210}
)

// Score bounds. Mate scores are expressed as ScoreLoss+ply (being mated)
// or ScoreWin-ply (mating), so anything beyond the thresholds is a mate.
const (
	ScoreWin           = 30000
	ScoreLoss          = -30000
	ScoreDraw          = 0
	ScoreWinThreshold  = 29900
	ScoreLossThreshold = -29900
)

// noEval marks a static evaluation that has not been computed yet.
const noEval = ScoreWin

type resultKind uint8

const (
	resultValid resultKind = iota
	// resultAborted is produced while unwinding from an abort or a cutoff
	// elsewhere in the split tree. The score is meaningless.
	resultAborted
	// resultPruned marks a move skipped by futility pruning.
	resultPruned
)

// result is what every recursive search call returns.
type result struct {
	score int
	kind  resultKind
}

var (
	abortedResult = result{kind: resultAborted}
	prunedResult  = result{kind: resultPruned}
)

func valid(score int) result { return result{score: score} }

func (r result) aborted() bool { return r.kind == resultAborted }
func (r result) pruned() bool  { return r.kind == resultPruned }

// neg flips the score to the parent's point of view. Aborted and pruned
// results stay what they are.
func (r result) neg() result {
	if r.kind != resultValid {
		return r
	}
	return result{score: -r.score}
}

// IsMateScore reports whether s encodes a forced mate for either side.
func IsMateScore(s int) bool {
	return s >= ScoreWinThreshold || s <= ScoreLossThreshold
}

// MateIn converts a mate score to a signed move count, positive when the
// side to move mates. It returns 0 for non-mate scores.
func MateIn(s int) int {
	switch {
	case s >= ScoreWinThreshold:
		return (ScoreWin - s + 1) / 2
	case s <= ScoreLossThreshold:
		return -(s - ScoreLoss + 1) / 2
	}
	return 0
}
