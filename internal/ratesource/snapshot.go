package ratesource

import (
	"encoding/json"
	"errors"
	"time"
)

// ResultSuccess is the result value of a usable response.
const ResultSuccess = "success"

// Snapshot is the set of rates for one base currency as returned by the
// remote source. It is also the payload cached under the base code.
type Snapshot struct {
	Result             string `json:"result"`
	Documentation      string `json:"documentation,omitempty"`
	TermsOfUse         string `json:"terms_of_use,omitempty"`
	TimeLastUpdateUnix int64  `json:"time_last_update_unix,omitempty"`
	TimeLastUpdateUTC  string `json:"time_last_update_utc,omitempty"`
	TimeNextUpdateUnix int64  `json:"time_next_update_unix"`
	TimeNextUpdateUTC  string `json:"time_next_update_utc,omitempty"`
	BaseCode           string `json:"base_code"`

	// ConversionRates maps a target code to the amount of target per one
	// unit of BaseCode.
	ConversionRates map[string]float64 `json:"conversion_rates"`

	// ErrorType is set by the remote source when Result is "error".
	ErrorType string `json:"error-type,omitempty"`
}

// UnmarshalJSON accepts rates under either "conversion_rates" (keyed API)
// or "rates" (open API).
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot
	aux := struct {
		*alias
		Rates map[string]float64 `json:"rates"`
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.ConversionRates == nil {
		s.ConversionRates = aux.Rates
	}
	return nil
}

// Validate reports the first required field missing from s.
func (s *Snapshot) Validate() error {
	switch {
	case s.Result == "":
		return errors.New("missing result")
	case s.BaseCode == "":
		return errors.New("missing base_code")
	case s.TimeNextUpdateUnix == 0:
		return errors.New("missing time_next_update_unix")
	case s.ConversionRates == nil:
		return errors.New("missing conversion_rates")
	}
	return nil
}

// Failed reports whether the source flagged the response as an error. A
// response without a result is not failed; Validate rejects it instead.
func (s *Snapshot) Failed() bool {
	return s.Result != "" && s.Result != ResultSuccess
}

// NextUpdate returns the instant the source publishes new rates.
func (s *Snapshot) NextUpdate() time.Time {
	return time.Unix(s.TimeNextUpdateUnix, 0)
}

// Rate returns the rate for target.
func (s *Snapshot) Rate(target string) (float64, error) {
	rate, ok := s.ConversionRates[target]
	if !ok {
		return 0, &UnknownTargetCurrencyError{Code: target}
	}
	return rate, nil
}
