// Package interview implements the adaptive interview orchestration
// engine: the session aggregate, the stage and difficulty state
// machine, turn evaluation with skill tracking, silence handling,
// integrity analysis and final report aggregation.
//
// Every model-backed step degrades to a deterministic heuristic when
// the gateway refuses or fails a call, so a session always progresses
// and always produces a report. A session has exactly one writer at a
// time; callers must serialize operations against a given session.
package interview
