package rcon

import "testing"

func TestParsePlayerList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"two players", "There are 2 of a max of 20 players online: alice, bob", []string{"alice", "bob"}},
		{"one player", "There are 1 of a max of 20 players online: Steve_77", []string{"Steve_77"}},
		{"empty list", "There are 0 of a max of 20 players online:", nil},
		{"garbage", "unexpected output", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePlayerList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got=%v want=%v", got, tt.want)
				}
			}
		})
	}
}
