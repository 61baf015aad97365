package entity

import (
	"encoding/json"
	"fmt"
)

// Claves reconocidas de UsageLimits.
const (
	LimitTransactionsPerDay = "max_transactions_per_day"
	LimitAPICallsPerDay     = "max_api_calls_per_day"
	LimitStorageBytes       = "max_storage_bytes"
	LimitRecords            = "max_records"
)

// UsageLimits límites comerciales de una licencia. Las claves no reconocidas
// se conservan en Extra y se serializan al mismo nivel que las conocidas.
type UsageLimits struct {
	MaxTransactionsPerDay *int64
	MaxAPICallsPerDay     *int64
	MaxStorageBytes       *int64
	MaxRecords            *int64
	Extra                 map[string]any
}

// MarshalJSON aplana los límites conocidos y Extra en un único objeto.
func (u UsageLimits) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+4)
	for k, v := range u.Extra {
		out[k] = v
	}
	put := func(key string, v *int64) {
		if v != nil {
			out[key] = *v
		}
	}
	put(LimitTransactionsPerDay, u.MaxTransactionsPerDay)
	put(LimitAPICallsPerDay, u.MaxAPICallsPerDay)
	put(LimitStorageBytes, u.MaxStorageBytes)
	put(LimitRecords, u.MaxRecords)
	return json.Marshal(out)
}

// UnmarshalJSON separa las claves conocidas del resto.
func (u *UsageLimits) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("usage limits: %w", err)
	}
	*u = UsageLimits{}
	take := func(key string) (*int64, error) {
		v, ok := raw[key]
		if !ok {
			return nil, nil
		}
		delete(raw, key)
		if string(v) == "null" {
			return nil, nil
		}
		var n int64
		if err := json.Unmarshal(v, &n); err != nil {
			return nil, fmt.Errorf("usage limits %s: %w", key, err)
		}
		return &n, nil
	}
	var err error
	if u.MaxTransactionsPerDay, err = take(LimitTransactionsPerDay); err != nil {
		return err
	}
	if u.MaxAPICallsPerDay, err = take(LimitAPICallsPerDay); err != nil {
		return err
	}
	if u.MaxStorageBytes, err = take(LimitStorageBytes); err != nil {
		return err
	}
	if u.MaxRecords, err = take(LimitRecords); err != nil {
		return err
	}
	if len(raw) > 0 {
		u.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("usage limits %s: %w", k, err)
			}
			u.Extra[k] = val
		}
	}
	return nil
}
