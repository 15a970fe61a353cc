package rules

import "testing"

func TestTurnManagerBarrier(t *testing.T) {
	tm := NewTurnManager(TeamRed)
	if tm.Phase() != PhaseSetup {
		t.Fatalf("expected setup phase, got %s", tm.Phase())
	}

	tm.Begin(nil)
	if tm.Phase() != PhaseTurnActive || tm.TurnNumber() != 1 || tm.Team() != TeamRed {
		t.Fatalf("unexpected state after begin: %s turn %d team %s", tm.Phase(), tm.TurnNumber(), tm.Team())
	}

	if _, ok := tm.Flag(P(TeamBlue, 0)); ok {
		t.Fatal("inactive team must not be able to flag")
	}

	done, ok := tm.Flag(P(TeamRed, 0))
	if !ok || done {
		t.Fatalf("first flag: expected ok and not done, got ok=%v done=%v", ok, done)
	}
	done, ok = tm.Flag(P(TeamRed, 0))
	if !ok || done {
		t.Fatal("re-flagging the same seat must not satisfy the barrier")
	}
	done, _ = tm.Flag(P(TeamRed, 1))
	if !done {
		t.Fatal("expected barrier met after both seats flagged")
	}

	tm.Finish()
	if tm.Team() != TeamBlue || tm.Phase() != PhaseTurnEnding {
		t.Fatalf("expected blue/ending, got %s/%s", tm.Team(), tm.Phase())
	}
	if tm.Flagged(P(TeamBlue, 0)) {
		t.Fatal("flags must reset between turns")
	}
}

func TestTurnManagerAutoFlag(t *testing.T) {
	tm := NewTurnManager(TeamBlue)
	gone := P(TeamBlue, 1)
	tm.Begin(func(p PlayerID) bool { return p == gone })

	if !tm.Flagged(gone) {
		t.Fatal("inactive seat should start flagged")
	}
	done, _ := tm.Flag(P(TeamBlue, 0))
	if !done {
		t.Fatal("single active seat should satisfy the barrier")
	}

	tm.End()
	tm.Begin(nil)
	if tm.Phase() != PhaseEnded {
		t.Fatal("ended manager must not restart")
	}
}
