package poker

import "testing"

func TestHoleCardIndices(t *testing.T) {
	for numPlayers := 2; numPlayers <= 9; numPlayers++ {
		seen := make(map[int]bool)
		for pos := 0; pos < numPlayers; pos++ {
			idx, err := HoleCardIndices(pos, numPlayers)
			if err != nil {
				t.Fatalf("HoleCardIndices(%d, %d): %v", pos, numPlayers, err)
			}
			for _, i := range idx {
				if seen[i] {
					t.Fatalf("index %d reused across seats for numPlayers=%d", i, numPlayers)
				}
				seen[i] = true
			}
		}

		community, err := CommunityCardIndices(numPlayers)
		if err != nil {
			t.Fatalf("CommunityCardIndices(%d): %v", numPlayers, err)
		}
		for _, i := range community {
			if seen[i] {
				t.Fatalf("community index %d collides with a hole-card index for numPlayers=%d", i, numPlayers)
			}
			seen[i] = true
		}

		if len(seen) != 2*numPlayers+MaxCommunityCards {
			t.Errorf("numPlayers=%d: expected %d distinct indices, got %d",
				numPlayers, 2*numPlayers+MaxCommunityCards, len(seen))
		}
	}
}

func TestHoleCardIndicesOutOfRange(t *testing.T) {
	if _, err := HoleCardIndices(0, 1); err == nil {
		t.Error("expected error for numPlayers below minimum")
	}
	if _, err := HoleCardIndices(0, 11); err == nil {
		t.Error("expected error for numPlayers above maximum")
	}
	if _, err := HoleCardIndices(-1, 4); err == nil {
		t.Error("expected error for negative dealPos")
	}
	if _, err := HoleCardIndices(4, 4); err == nil {
		t.Error("expected error for dealPos >= numPlayers")
	}
}

func TestCommunityCardIndicesDeterministic(t *testing.T) {
	a, err := CommunityCardIndices(6)
	if err != nil {
		t.Fatalf("CommunityCardIndices: %v", err)
	}
	b, err := CommunityCardIndices(6)
	if err != nil {
		t.Fatalf("CommunityCardIndices: %v", err)
	}
	if a != b {
		t.Errorf("CommunityCardIndices should be a pure function of numPlayers: got %v vs %v", a, b)
	}
}
