package schedule

import (
	"testing"

	"github.com/courtside/club-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestGenerateRoundRobin(t *testing.T) {
	t.Run("every pair plays exactly once", func(t *testing.T) {
		participants := []*models.GroupParticipant{
			{ID: 1, PlayerID: intPtr(11)},
			{ID: 2, PlayerID: intPtr(12)},
			{ID: 3, PlayerID: intPtr(13)},
			{ID: 4, PlayerID: intPtr(14)},
		}
		pairings, err := GenerateRoundRobin(participants)
		require.NoError(t, err)
		require.Len(t, pairings, 6) // n(n-1)/2

		seen := make(map[[2]int]bool)
		for _, p := range pairings {
			assert.NotEqual(t, p.Participant1ID, p.Participant2ID)
			key := [2]int{p.Participant1ID, p.Participant2ID}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			assert.False(t, seen[key], "pair %v scheduled twice", key)
			seen[key] = true
		}
	})

	t.Run("guest pairings never affect elo", func(t *testing.T) {
		participants := []*models.GroupParticipant{
			{ID: 1, PlayerID: intPtr(11)},
			{ID: 2, PlayerID: intPtr(12)},
			{ID: 3, GuestName: strPtr("Walk-in Wim")},
		}
		pairings, err := GenerateRoundRobin(participants)
		require.NoError(t, err)
		require.Len(t, pairings, 3)

		for _, p := range pairings {
			guestInvolved := p.Participant1ID == 3 || p.Participant2ID == 3
			assert.Equal(t, !guestInvolved, p.AffectsElo)
		}
	})

	t.Run("rejects rosters below two", func(t *testing.T) {
		_, err := GenerateRoundRobin([]*models.GroupParticipant{{ID: 1}})
		assert.Error(t, err)
	})
}
