package types

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/dodao/comet-market-updates/internal/utils/safecast"
)

// Timelock durations of the market update protocol.
var (
	// MarketUpdateDelay is the delay configured on every deployed MarketUpdateTimelock.
	MarketUpdateDelay = NewDuration(2 * 24 * time.Hour)

	// GracePeriod is how long a queued timelock transaction stays executable after its eta.
	GracePeriod = NewDuration(14 * 24 * time.Hour)

	// MaximumDelay is the largest delay a timelock accepts.
	MaximumDelay = NewDuration(30 * 24 * time.Hour)
)

// Duration wraps time.Duration with support for JSON encoding. On chain it is expressed in whole
// seconds.
type Duration struct {
	time.Duration
}

// NewDuration wraps a time.Duration with a Duration.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d}
}

// DurationFromSeconds converts an on-chain number of seconds into a Duration.
func DurationFromSeconds(seconds uint64) (Duration, error) {
	secs, err := safecast.Uint64ToInt64(seconds)
	if err != nil {
		return Duration{}, err
	}
	if secs > math.MaxInt64/int64(time.Second) {
		return Duration{}, fmt.Errorf("%d seconds overflow a duration", secs)
	}

	return NewDuration(time.Duration(secs) * time.Second), nil
}

// Secs returns the duration truncated to whole seconds.
func (d Duration) Secs() uint64 {
	if d.Duration < 0 {
		return 0
	}

	return uint64(d.Duration / time.Second)
}

// BigSecs returns the duration in whole seconds as a uint256 compatible value.
func (d Duration) BigSecs() *big.Int {
	return new(big.Int).SetUint64(d.Secs())
}

// String returns a string representing the duration in the form "72h3m0.5s".
func (d Duration) String() string {
	return d.Duration.String()
}

// MarshalJSON marshals the duration into JSON bytes and implements the json.Marshaler interface.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON unmarshals the duration from JSON bytes and implements the json.Unmarshaler
// interface.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case string:
		var err error
		if d.Duration, err = time.ParseDuration(value); err != nil {
			return err
		}

		return nil
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
}
