package board_test

import (
	"sort"
	"testing"

	"github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"

	"chesscore/board"
)

// Independent generators serve as oracles for the legal move set.

func dragontoothMoves(dt *dragontoothmg.Board) []string {
	moves := dt.GenerateLegalMoves()
	out := make([]string, len(moves))
	for i := range moves {
		out[i] = moves[i].String()
	}
	sort.Strings(out)
	return out
}

func sameMoveSet(t *testing.T, fen string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: %d moves, oracle has %d\n got: %v\nwant: %v", fen, len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: move %s, oracle %s", fen, got[i], want[i])
		}
	}
}

func TestMoveSetMatchesDragontooth(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			dt := dragontoothmg.ParseFen(tc.fen)
			sameMoveSet(t, tc.fen, moveStrings(pos.LegalMoves()), dragontoothMoves(&dt))

			// One ply deeper: every child must agree as well.
			for _, m := range pos.LegalMoves() {
				child := pos.Apply(m)
				var dtMove dragontoothmg.Move
				found := false
				for _, cand := range dt.GenerateLegalMoves() {
					if cand.String() == m.String() {
						dtMove, found = cand, true
						break
					}
				}
				if !found {
					t.Fatalf("%s: oracle lacks %s", tc.fen, m)
				}
				undo := dt.Apply(dtMove)
				sameMoveSet(t, child.FEN(), moveStrings(child.LegalMoves()), dragontoothMoves(&dt))
				undo()
			}
		})
	}
}

func TestMoveCountMatchesNotnil(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 60, int64(i+200), func(pos *board.Position, moves []board.Move) {
			opt, err := chess.FEN(pos.FEN())
			if err != nil {
				t.Fatalf("notnil FEN(%s): %v", pos.FEN(), err)
			}
			game := chess.NewGame(opt)
			if got, want := len(moves), len(game.ValidMoves()); got != want {
				t.Fatalf("%s: %d moves, notnil/chess has %d", pos.FEN(), got, want)
			}
		})
	}
}

func TestPerftMatchesGooseMG(t *testing.T) {
	depth := 3
	if testing.Short() {
		depth = 2
	}
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := goosemg.ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("goosemg.ParseFEN: %v", err)
			}
			pos := mustFEN(t, tc.fen)
			if got, want := board.Perft(&pos, depth), goosemg.Perft(ref, depth); got != want {
				t.Fatalf("perft depth%d: got %d, goosemg %d", depth, got, want)
			}
		})
	}
}
