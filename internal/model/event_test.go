package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_JSON(t *testing.T) {
	event := Event{
		ID:          3,
		Title:       "Concert",
		Date:        time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		TicketPrice: decimal.RequireFromString("10.5"),
	}

	t.Run("Success", func(t *testing.T) {
		body, err := json.Marshal(event)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"date":"2030-05-01"`)
		assert.Contains(t, string(body), `"ticket_price":"10.50"`)
		assert.Contains(t, string(body), `"title":"Concert"`)

		var decoded Event
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.True(t, event.Date.Equal(decoded.Date))
		assert.True(t, event.TicketPrice.Equal(decoded.TicketPrice))
	})

	t.Run("Failed - invalid date", func(t *testing.T) {
		var decoded Event
		assert.Error(t, json.Unmarshal([]byte(`{"date":"01/05/2030"}`), &decoded))
	})
}

func TestAccount_JSON(t *testing.T) {
	body, err := json.Marshal(&Account{UserID: 2, Balance: decimal.NewFromInt(7)})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"balance":"7.00"`)
	assert.Contains(t, string(body), `"user_id":2`)

	var decoded Account
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.True(t, decimal.NewFromInt(7).Equal(decoded.Balance))
}
