package lcutypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerEqualByGameNameAndTagLine(t *testing.T) {
	a := Player{GameName: "Faker", TagLine: "KR1"}
	b := Player{GameName: "Faker", TagLine: "KR1"}
	c := Player{GameName: "Faker", TagLine: "NA1"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestSessionEventDataDecodesUnknownPhaseGracefully(t *testing.T) {
	raw := []byte(`{"phase":"SomeFuturePhase","gameData":{"gameId":123,"queueId":420}}`)

	var data SessionEventData
	err := json.Unmarshal(raw, &data)

	assert.NoError(t, err)
	assert.Equal(t, GamePhase("SomeFuturePhase"), data.Phase)
	assert.Equal(t, MatchId(123), data.GameData.GameId)
	assert.Equal(t, 420, data.GameData.QueueId)
}

func TestMetadataFileRoundTrip(t *testing.T) {
	win := true
	mf := MetadataFile{
		Kind:       SidecarMetadata,
		Highlights: []float64{12.5, 90},
		Favorite:   true,
		Metadata: &GameMetadata{
			MatchId:      42,
			QueueName:    "Ranked Solo/Duo",
			Ranked:       true,
			Participants: []Participant{{ParticipantId: 1, TeamId: 100, Win: &win}},
		},
	}

	data, err := json.Marshal(mf)
	assert.NoError(t, err)

	var decoded MetadataFile
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, SidecarMetadata, decoded.Kind)
	assert.NotNil(t, decoded.Metadata)
	assert.Equal(t, MatchId(42), decoded.Metadata.MatchId)
	assert.True(t, *decoded.Metadata.Participants[0].Win)
}
