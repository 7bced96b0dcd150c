package ratesource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_UnmarshalJSON(t *testing.T) {
	t.Run("conversion_rates", func(t *testing.T) {
		var s Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{
			"result": "success",
			"documentation": "https://www.exchangerate-api.com/docs",
			"terms_of_use": "https://www.exchangerate-api.com/terms",
			"time_last_update_unix": 1700000000,
			"time_last_update_utc": "Tue, 14 Nov 2023 22:13:20 +0000",
			"time_next_update_unix": 1700086400,
			"time_next_update_utc": "Wed, 15 Nov 2023 22:13:20 +0000",
			"base_code": "USD",
			"conversion_rates": {"USD": 1, "KRW": 1300.5}
		}`), &s))

		require.NoError(t, s.Validate())
		assert.Equal(t, "USD", s.BaseCode)
		assert.Equal(t, int64(1700086400), s.TimeNextUpdateUnix)
		assert.Equal(t, "https://www.exchangerate-api.com/docs", s.Documentation)
		assert.InDelta(t, 1300.5, s.ConversionRates["KRW"], 0)
		assert.False(t, s.Failed())
	})

	t.Run("rates", func(t *testing.T) {
		var s Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{"result":"success","base_code":"AUD","time_next_update_unix":5,"rates":{"USD":0.67}}`), &s))
		require.NoError(t, s.Validate())
		assert.InDelta(t, 0.67, s.ConversionRates["USD"], 0)
	})

	t.Run("conversion_rates wins", func(t *testing.T) {
		var s Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{"conversion_rates":{"USD":1},"rates":{"USD":2}}`), &s))
		assert.InDelta(t, 1, s.ConversionRates["USD"], 0)
	})

	t.Run("empty rates are present", func(t *testing.T) {
		var s Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{"result":"success","base_code":"USD","time_next_update_unix":5,"rates":{}}`), &s))
		require.NoError(t, s.Validate())

		_, err := s.Rate("KRW")
		assert.ErrorIs(t, err, ErrUnknownTargetCurrency)
	})
}

func TestSnapshot_CacheRoundTrip(t *testing.T) {
	in := Snapshot{
		Result:             ResultSuccess,
		BaseCode:           "KRW",
		TimeNextUpdateUnix: 42,
		ConversionRates:    map[string]float64{"USD": 0.000722},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conversion_rates"`)

	var out Snapshot
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestSnapshot_Failed(t *testing.T) {
	assert.False(t, (&Snapshot{Result: ResultSuccess}).Failed())
	assert.True(t, (&Snapshot{Result: "error"}).Failed())
}

func TestSnapshot_Validate(t *testing.T) {
	valid := func() Snapshot {
		return Snapshot{
			Result:             ResultSuccess,
			BaseCode:           "USD",
			TimeNextUpdateUnix: 42,
			ConversionRates:    map[string]float64{"KRW": 1300},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr string
	}{
		{name: "complete", mutate: func(*Snapshot) {}},
		{name: "missing result", mutate: func(s *Snapshot) { s.Result = "" }, wantErr: "missing result"},
		{name: "missing base code", mutate: func(s *Snapshot) { s.BaseCode = "" }, wantErr: "missing base_code"},
		{
			name:    "missing next update",
			mutate:  func(s *Snapshot) { s.TimeNextUpdateUnix = 0 },
			wantErr: "missing time_next_update_unix",
		},
		{name: "missing rates", mutate: func(s *Snapshot) { s.ConversionRates = nil }, wantErr: "missing conversion_rates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestUnknownTargetCurrencyError(t *testing.T) {
	err := &UnknownTargetCurrencyError{Code: "KRW"}
	assert.Equal(t, "target currency KRW not found in rates", err.Error())
	assert.ErrorIs(t, err, ErrUnknownTargetCurrency)
	assert.NotErrorIs(t, err, ErrDecode)
}
