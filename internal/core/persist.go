package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoadState restores the ledger state from store. A missing entry is an
// empty collection, not an error.
func LoadState(ctx context.Context, store Store) (LedgerState, error) {
	var st LedgerState

	if err := loadEntry(ctx, store, KeySkuData, &st.SkuData); err != nil {
		return LedgerState{}, err
	}
	if err := loadEntry(ctx, store, KeyScannedData, &st.ScannedData); err != nil {
		return LedgerState{}, err
	}

	if st.SkuData == nil {
		st.SkuData = []SkuRecord{}
	}
	if st.ScannedData == nil {
		st.ScannedData = []ScanEvent{}
	}
	return st, nil
}

func loadEntry(ctx context.Context, store Store, key string, dst any) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load state %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("load state %s: decode: %w", key, err)
	}
	return nil
}

// SaveState writes both entries of the ledger state in one atomic store
// call, so a failed save leaves the previous state intact.
func SaveState(ctx context.Context, store Store, st LedgerState) error {
	if st.SkuData == nil {
		st.SkuData = []SkuRecord{}
	}
	if st.ScannedData == nil {
		st.ScannedData = []ScanEvent{}
	}

	scanned, err := json.Marshal(st.ScannedData)
	if err != nil {
		return fmt.Errorf("save state %s: encode: %w", KeyScannedData, err)
	}
	skus, err := json.Marshal(st.SkuData)
	if err != nil {
		return fmt.Errorf("save state %s: encode: %w", KeySkuData, err)
	}

	err = store.PutAll(ctx, map[string][]byte{
		KeyScannedData: scanned,
		KeySkuData:     skus,
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
