package interview

// NextStage maps conversation progress to an interview phase.
//
// Pure and deterministic: callable repeatedly without state. The
// thresholds are on completed turns; the Debug stage is reserved for
// role-specific plans and is not reachable from turn count alone.
func NextStage(hasGreeted bool, turnCount int) Stage {
	if !hasGreeted || turnCount == 0 {
		return StageIntroduction
	}

	switch {
	case turnCount <= 1:
		return StageBackground
	case turnCount <= 3:
		return StageCore
	case turnCount <= 5:
		return StageDeepDive
	case turnCount <= 7:
		return StageCase
	default:
		return StageWrapUp
	}
}
