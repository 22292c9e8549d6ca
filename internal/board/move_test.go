package board

import "testing"

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in      string
		rank    int8
		file    int8
		wantErr bool
	}{
		{in: "a1", rank: 0, file: 0},
		{in: "h8", rank: 7, file: 7},
		{in: "e4", rank: 3, file: 4},
		{in: "i1", wantErr: true},
		{in: "a9", wantErr: true},
		{in: "a0", wantErr: true},
		{in: "A1", wantErr: true},
		{in: "e", wantErr: true},
		{in: "e44", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			sq, err := ParseSquare(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseSquare(%q) = %v, want error", tc.in, sq)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSquare(%q): %v", tc.in, err)
			}
			if sq.Rank != tc.rank || sq.File != tc.file {
				t.Errorf("ParseSquare(%q) = %+v", tc.in, sq)
			}
			if sq.String() != tc.in {
				t.Errorf("String() = %q, want %q", sq.String(), tc.in)
			}
		})
	}
}

func TestSquareAddLeavesBoard(t *testing.T) {
	sq := MustParseSquare("h8").Add(1, 0)
	if sq.IsValid() {
		t.Errorf("h8+1 rank should be invalid, got %+v", sq)
	}
	if sq.String() != "-" {
		t.Errorf("invalid square String() = %q, want \"-\"", sq.String())
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		want    Move
		wantErr bool
	}{
		{in: "e2e4", want: NewMove(MustParseSquare("e2"), MustParseSquare("e4"))},
		{in: "e7e8q", want: NewPromotion(MustParseSquare("e7"), MustParseSquare("e8"), Queen)},
		{in: "a2a1n", want: NewPromotion(MustParseSquare("a2"), MustParseSquare("a1"), Knight)},
		{in: "b7b8r", want: NewPromotion(MustParseSquare("b7"), MustParseSquare("b8"), Rook)},
		{in: "b7b8b", want: NewPromotion(MustParseSquare("b7"), MustParseSquare("b8"), Bishop)},
		{in: "e7e8k", wantErr: true},
		{in: "e7e8Q", wantErr: true},
		{in: "z2e4", wantErr: true},
		{in: "e2e9", wantErr: true},
		{in: "e2e", wantErr: true},
		{in: "e2e4qq", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			m, err := ParseMove(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseMove(%q) = %v, want error", tc.in, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMove(%q): %v", tc.in, err)
			}
			if m != tc.want {
				t.Errorf("ParseMove(%q) = %+v, want %+v", tc.in, m, tc.want)
			}
			if m.String() != tc.in {
				t.Errorf("String() = %q, want %q", m.String(), tc.in)
			}
		})
	}
}

func TestMoveListReuse(t *testing.T) {
	ml := NewMoveList()
	pos := NewPosition()

	pos.GenerateMoves(ml, false)
	first := ml.Len()
	ml.Clear()
	if ml.Len() != 0 {
		t.Fatalf("Clear left %d moves", ml.Len())
	}
	pos.GenerateMoves(ml, false)
	if ml.Len() != first {
		t.Errorf("regenerated %d moves, want %d", ml.Len(), first)
	}

	ml.Truncate(3)
	if ml.Len() != 3 {
		t.Errorf("Truncate(3) left %d moves", ml.Len())
	}
}
