package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{}\n```", "{}"},
		{"no fence", "  {\"a\":1} ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestParseReply(t *testing.T) {
	t.Run("receipt", func(t *testing.T) {
		result, err := ParseReply("```json\n" + `{
			"amount": 42.35,
			"date": "2026-03-14T00:00:00Z",
			"description": "Weekly shop",
			"merchantName": "Corner Market",
			"category": "groceries"
		}` + "\n```")

		require.NoError(t, err)
		assert.True(t, result.IsReceipt)
		assert.True(t, result.Amount.Equal(decimal.RequireFromString("42.35")))
		require.NotNil(t, result.Date)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), result.Date.UTC())
		assert.Equal(t, "Corner Market", result.MerchantName)
		assert.Equal(t, "groceries", result.Category)
	})

	t.Run("plain date and quoted amount", func(t *testing.T) {
		result, err := ParseReply(`{"amount":"12.00","date":"2026-01-02","category":"Food"}`)

		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(decimal.NewFromInt(12)))
		require.NotNil(t, result.Date)
		assert.Equal(t, 2, result.Date.Day())
		assert.Equal(t, "food", result.Category)
	})

	t.Run("unknown category falls back", func(t *testing.T) {
		result, err := ParseReply(`{"amount":5,"category":"salary"}`)

		require.NoError(t, err)
		assert.Equal(t, "other-expense", result.Category)
		assert.Nil(t, result.Date)
	})

	t.Run("empty object is not a receipt", func(t *testing.T) {
		result, err := ParseReply("```json\n{}\n```")

		require.NoError(t, err)
		assert.False(t, result.IsReceipt)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseReply("I could not read this image")
		assert.Error(t, err)
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := ParseReply(`{"amount":"twelve"}`)
		assert.Error(t, err)
	})
}
