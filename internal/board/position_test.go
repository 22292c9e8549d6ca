package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var roundTripFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	"1r2k3/P7/8/8/8/8/6p1/4K2R w K - 0 1",
	"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
}

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func pseudoLegal(pos *Position) []Move {
	ml := NewMoveList()
	pos.GenerateMoves(ml, true)
	pos.GenerateMoves(ml, false)
	return ml.Slice()
}

func moveStrings(ml *MoveList) []string {
	out := make([]string, 0, ml.Len())
	for _, m := range ml.Slice() {
		out = append(out, m.String())
	}
	return out
}

// walkRoundTrip plays every pseudo-legal move to the given depth and checks
// that undoing it restores the position exactly.
func walkRoundTrip(t *testing.T, pos *Position, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}
	for _, m := range pseudoLegal(pos) {
		before := *pos
		undo, err := pos.DoMove(m)
		if err != nil {
			t.Fatalf("DoMove(%s): %v", m, err)
		}
		walkRoundTrip(t, pos, depth-1)
		if err := pos.UndoMove(undo); err != nil {
			t.Fatalf("UndoMove(%s): %v", m, err)
		}
		if diff := cmp.Diff(before, *pos); diff != "" {
			t.Fatalf("%s: position not restored after %s (-want +got):\n%s", before.ToFEN(), m, diff)
		}
	}
}

func TestDoUndoRoundTrip(t *testing.T) {
	for _, fen := range roundTripFENs {
		t.Run(fen, func(t *testing.T) {
			walkRoundTrip(t, mustFEN(t, fen), 2)
		})
	}
}

func TestStartPositionMoveCounts(t *testing.T) {
	pos := NewPosition()

	for _, side := range []Color{White, Black} {
		pos.SideToMove = side

		captures := NewMoveList()
		pos.GenerateMoves(captures, true)
		if captures.Len() != 0 {
			t.Errorf("%s: %d captures in start position, want 0", side, captures.Len())
		}

		quiet := NewMoveList()
		pos.GenerateMoves(quiet, false)
		if quiet.Len() != 20 {
			t.Errorf("%s: %d pseudo-legal moves, want 20", side, quiet.Len())
		}

		legal, err := pos.LegalMoves()
		if err != nil {
			t.Fatal(err)
		}
		if legal.Len() != 20 {
			t.Errorf("%s: %d legal moves, want 20", side, legal.Len())
		}
	}
}

func TestGenerationOrder(t *testing.T) {
	pos := NewPosition()
	ml := NewMoveList()
	pos.GenerateMoves(ml, false)

	want := []string{
		"b1c3", "b1a3", "g1h3", "g1f3",
		"a2a3", "a2a4", "b2b3", "b2b4", "c2c3", "c2c4", "d2d3", "d2d4",
		"e2e3", "e2e4", "f2f3", "f2f4", "g2g3", "g2g4", "h2h3", "h2h4",
	}
	if diff := cmp.Diff(want, moveStrings(ml)); diff != "" {
		t.Errorf("generation order mismatch (-want +got):\n%s", diff)
	}
}

func TestEnPassant(t *testing.T) {
	pos := NewPosition()
	if err := pos.ApplyMoves([]string{"e2e4"}); err != nil {
		t.Fatal(err)
	}
	if pos.EnPassant != MustParseSquare("e4") {
		t.Fatalf("after e2e4 en passant target = %s, want e4", pos.EnPassant)
	}

	if err := pos.ApplyMoves([]string{"a7a6", "e4e5", "d7d5"}); err != nil {
		t.Fatal(err)
	}
	if pos.EnPassant != MustParseSquare("d5") {
		t.Fatalf("after d7d5 en passant target = %s, want d5", pos.EnPassant)
	}

	ep := NewMove(MustParseSquare("e5"), MustParseSquare("d6"))
	captures := NewMoveList()
	pos.GenerateMoves(captures, true)
	if !captures.Contains(ep) {
		t.Fatalf("en passant e5d6 not generated; captures: %v", moveStrings(captures))
	}

	before := *pos
	undo, err := pos.DoMove(ep)
	if err != nil {
		t.Fatal(err)
	}
	if !pos.IsEmpty(MustParseSquare("d5")) {
		t.Error("captured pawn still on d5")
	}
	if got := pos.PieceAt(MustParseSquare("d6")); got != NewPiece(Pawn, White) {
		t.Errorf("d6 holds %v, want white pawn", got)
	}
	if undo.Captured != NewPiece(Pawn, Black) {
		t.Errorf("undo.Captured = %v, want black pawn", undo.Captured)
	}
	if pos.EnPassant != NoSquare {
		t.Errorf("en passant target not cleared: %s", pos.EnPassant)
	}

	if err := pos.UndoMove(undo); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, *pos); diff != "" {
		t.Errorf("en passant not undone (-want +got):\n%s", diff)
	}

	// The chance lapses after any other move.
	if err := pos.ApplyMoves([]string{"g1f3", "a6a5"}); err != nil {
		t.Fatal(err)
	}
	captures.Clear()
	pos.GenerateMoves(captures, true)
	if captures.Contains(ep) {
		t.Error("en passant still generated a move later")
	}
}

func TestCastling(t *testing.T) {
	const fen = "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1"
	short := NewMove(MustParseSquare("e1"), MustParseSquare("g1"))
	long := NewMove(MustParseSquare("e1"), MustParseSquare("c1"))

	t.Run("both sides available", func(t *testing.T) {
		pos := mustFEN(t, fen)
		legal, err := pos.LegalMoves()
		if err != nil {
			t.Fatal(err)
		}
		if !legal.Contains(short) || !legal.Contains(long) {
			t.Errorf("castling missing from %v", moveStrings(legal))
		}
	})

	t.Run("rook relocation and undo", func(t *testing.T) {
		pos := mustFEN(t, fen)
		before := *pos
		undo, err := pos.DoMove(short)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.PieceAt(MustParseSquare("f1")); got != NewPiece(Rook, White) {
			t.Errorf("f1 holds %v after O-O", got)
		}
		if !pos.IsEmpty(MustParseSquare("h1")) {
			t.Error("h1 not emptied by O-O")
		}
		if pos.Castling[White] != (CastleRights{}) {
			t.Errorf("white rights after castling: %+v", pos.Castling[White])
		}
		if err := pos.UndoMove(undo); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(before, *pos); diff != "" {
			t.Errorf("O-O not undone (-want +got):\n%s", diff)
		}

		undo, err = pos.DoMove(long)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.PieceAt(MustParseSquare("d1")); got != NewPiece(Rook, White) {
			t.Errorf("d1 holds %v after O-O-O", got)
		}
		if err := pos.UndoMove(undo); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(before, *pos); diff != "" {
			t.Errorf("O-O-O not undone (-want +got):\n%s", diff)
		}
	})

	t.Run("blocked by piece on f1", func(t *testing.T) {
		pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3KB1R w KQ - 0 1")
		ml := NewMoveList()
		pos.GenerateMoves(ml, false)
		if ml.Contains(short) {
			t.Error("O-O generated through an occupied f1")
		}
	})

	t.Run("blocked by piece on g1", func(t *testing.T) {
		pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K1NR w KQ - 0 1")
		ml := NewMoveList()
		pos.GenerateMoves(ml, false)
		if ml.Contains(short) {
			t.Error("O-O generated through an occupied g1")
		}
	})

	t.Run("rights cleared by rook move", func(t *testing.T) {
		pos := mustFEN(t, fen)
		if err := pos.ApplyMoves([]string{"h1h2", "e8d8", "h2h1", "d8e8"}); err != nil {
			t.Fatal(err)
		}
		if pos.Castling[White].Short {
			t.Error("short rights survived a rook move from h1")
		}
		if !pos.Castling[White].Long {
			t.Error("long rights lost to a rook move from h1")
		}
		ml := NewMoveList()
		pos.GenerateMoves(ml, false)
		if ml.Contains(short) {
			t.Error("O-O generated after the h1 rook moved")
		}
		if !ml.Contains(long) {
			t.Error("O-O-O missing after the h1 rook moved")
		}
	})

	t.Run("rights cleared by king move", func(t *testing.T) {
		pos := mustFEN(t, fen)
		if err := pos.ApplyMoves([]string{"e1f1", "e8d8", "f1e1", "d8e8"}); err != nil {
			t.Fatal(err)
		}
		ml := NewMoveList()
		pos.GenerateMoves(ml, false)
		if ml.Contains(short) || ml.Contains(long) {
			t.Error("castling generated after the king moved")
		}
	})

	// Attacked transit squares are not examined: the black rook on f2 covers
	// f1, yet O-O is accepted because g1 itself is safe.
	t.Run("transit square attack is not checked", func(t *testing.T) {
		pos := mustFEN(t, "4k3/8/8/8/8/8/5r2/4K2R w K - 0 1")
		legal, err := pos.LegalMoves()
		if err != nil {
			t.Fatal(err)
		}
		if !legal.Contains(short) {
			t.Errorf("O-O through attacked f1 expected to be allowed; legal: %v", moveStrings(legal))
		}
	})
}

func TestIsCastling(t *testing.T) {
	tests := []struct {
		fen  string
		move string
		want bool
	}{
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8g8", true},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", true},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", true},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQ - 0 1", "e8g8", false},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQk - 0 1", "e8c8", false},
		{"r3k1nr/8/8/8/8/8/8/4K3 b kq - 0 1", "e8g8", false},
		{"rn2k2r/8/8/8/8/8/8/4K3 b kq - 0 1", "e8c8", false},
		{"r3k3/8/8/8/8/8/8/4K3 b kq - 0 1", "e8g8", false},
		{"r3k2r/8/8/8/8/8/8/4K3 w kq - 0 1", "e8g8", false},
		{"r3k2r/8/8/8/8/8/8/4K3 b kq - 0 1", "e8f8", false},
	}

	for _, tc := range tests {
		t.Run(tc.fen+" "+tc.move, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			m, err := ParseMove(tc.move)
			if err != nil {
				t.Fatal(err)
			}
			if got := pos.IsCastling(m); got != tc.want {
				t.Errorf("IsCastling(%s) = %v, want %v", tc.move, got, tc.want)
			}
		})
	}
}

func TestPromotion(t *testing.T) {
	pos := mustFEN(t, "1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1")

	quiet := NewMoveList()
	pos.GenerateMoves(quiet, false)
	captures := NewMoveList()
	pos.GenerateMoves(captures, true)

	a7, a8, b8 := MustParseSquare("a7"), MustParseSquare("a8"), MustParseSquare("b8")
	for _, pt := range []PieceType{Queen, Rook, Bishop, Knight} {
		if !quiet.Contains(NewPromotion(a7, a8, pt)) {
			t.Errorf("push promotion to %s missing", pt)
		}
		if !captures.Contains(NewPromotion(a7, b8, pt)) {
			t.Errorf("capture promotion to %s missing", pt)
		}
	}
	if quiet.Contains(NewMove(a7, a8)) || captures.Contains(NewMove(a7, b8)) {
		t.Error("non-promoting move to the back rank generated")
	}

	before := *pos
	undo, err := pos.DoMove(NewPromotion(a7, b8, Knight))
	if err != nil {
		t.Fatal(err)
	}
	if got := pos.PieceAt(b8); got != NewPiece(Knight, White) {
		t.Errorf("b8 holds %v, want white knight", got)
	}
	if err := pos.UndoMove(undo); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, *pos); diff != "" {
		t.Errorf("promotion not undone (-want +got):\n%s", diff)
	}
}

func TestMoveErrors(t *testing.T) {
	pos := NewPosition()

	_, err := pos.DoMove(NewMove(MustParseSquare("e4"), MustParseSquare("e5")))
	if !errors.Is(err, ErrSourceEmpty) {
		t.Errorf("DoMove from empty square: err = %v, want ErrSourceEmpty", err)
	}

	err = pos.UndoMove(UndoInfo{Move: NewMove(MustParseSquare("e2"), MustParseSquare("e4"))})
	if !errors.Is(err, ErrDestinationEmpty) {
		t.Errorf("UndoMove onto empty square: err = %v, want ErrDestinationEmpty", err)
	}

	if diff := cmp.Diff(*NewPosition(), *pos); diff != "" {
		t.Errorf("failed moves changed the position (-want +got):\n%s", diff)
	}

	if err := pos.ApplyMoves([]string{"e2e4", "e7e9"}); err == nil {
		t.Error("ApplyMoves accepted e7e9")
	}
}

func TestNullMove(t *testing.T) {
	pos := NewPosition()
	before := *pos
	pos.DoNullMove()
	if pos.SideToMove != Black {
		t.Error("null move did not pass the turn")
	}
	pos.UndoNullMove()
	if diff := cmp.Diff(before, *pos); diff != "" {
		t.Errorf("null move not undone (-want +got):\n%s", diff)
	}
}

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range roundTripFENs {
		if got := mustFEN(t, fen).ToFEN(); got != fen {
			t.Errorf("ToFEN(ParseFEN(%q)) = %q", fen, got)
		}
	}

	if got := NewPosition().ToFEN(); got != StartFEN {
		t.Errorf("NewPosition().ToFEN() = %q, want %q", got, StartFEN)
	}

	for _, bad := range []string{
		"",
		"8/8/8/8/8/8/8 w - -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX -",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4",
	} {
		if _, err := ParseFEN(bad); err == nil {
			t.Errorf("ParseFEN(%q) succeeded", bad)
		}
	}
}
