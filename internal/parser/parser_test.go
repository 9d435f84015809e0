package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

func TestNew(t *testing.T) {
	defaults := Defaults{Currency: "MXN", ReferenceYear: "2025"}

	t.Run("positional strategy", func(t *testing.T) {
		p, err := New(models.StrategyChoice{
			Strategy: models.StrategyPositional,
			Account:  "5516",
			Currency: "USD",
		}, defaults)
		require.NoError(t, err)

		bbva, ok := p.(*BBVAParser)
		require.True(t, ok)
		assert.Equal(t, "5516", bbva.Account)
		assert.Equal(t, "USD", bbva.Currency) // detected currency beats the default
		assert.Equal(t, "2025", bbva.ReferenceYear)
		assert.Equal(t, "BBVA", p.BankName())
	})

	t.Run("line-pattern strategy", func(t *testing.T) {
		p, err := New(models.StrategyChoice{
			Strategy: models.StrategyLinePattern,
			Account:  "TC",
		}, defaults)
		require.NoError(t, err)

		card, ok := p.(*BBVACardParser)
		require.True(t, ok)
		assert.Equal(t, "TC", card.Account)
		assert.Equal(t, "MXN", card.Currency) // default fills the gap
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := New(models.StrategyChoice{Strategy: "ocr"}, defaults)
		assert.Error(t, err)
	})
}
