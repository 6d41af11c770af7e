package spreads

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katelouie/arcanite/internal/domain"
)

func TestNewEmbedded(t *testing.T) {
	reg, err := NewEmbedded()
	require.NoError(t, err)

	assert.Equal(t, []string{"five_card_cross", "single_card", "three_card"}, reg.List())

	spread, err := reg.Spread("three_card")
	require.NoError(t, err)
	assert.Equal(t, "Past, Present, Future", spread.Name)
	require.Len(t, spread.Positions, 3)
	assert.Equal(t, "temporal_positions.past", spread.Positions[0].RAGMapping)
	assert.Equal(t, "The current state of the connection.",
		spread.Positions[1].QuestionAdaptations[domain.LoveQuestion])
}

func TestSpread_NotFound(t *testing.T) {
	reg, err := NewEmbedded()
	require.NoError(t, err)

	_, err = reg.Spread("celtic_cross")
	assert.True(t, errors.Is(err, domain.ErrSpreadNotFound))
	assert.Contains(t, err.Error(), "three_card", "error should list available spreads")
}

func TestInfos(t *testing.T) {
	reg, err := NewEmbedded()
	require.NoError(t, err)

	infos := reg.Infos()
	require.Len(t, infos, 3)
	assert.Equal(t, "five_card_cross", infos[0].ID)
	assert.Equal(t, 5, infos[0].Positions)
	assert.Equal(t, "intermediate", infos[0].Difficulty)
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]string{
		"missing id": `
spreads:
  - name: Nameless
    positions:
      - name: Only
        rag_mapping: temporal_positions.present
`,
		"no positions": `
spreads:
  - id: empty
    name: Empty
`,
		"position without rag_mapping": `
spreads:
  - id: broken
    name: Broken
    positions:
      - name: Unmapped
`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := parse([]byte("spreads: [unclosed"))
	assert.Error(t, err)
}
