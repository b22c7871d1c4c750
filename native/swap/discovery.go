package swap

import (
	"fmt"

	"openswap/ledger"
)

// FindLiveOrder locates the live order record for a configuration by scanning
// the records at its derived address for the beacon token. Stale records
// without the beacon are ignored. Given a fixed ledger state the result is
// deterministic: the unique beacon-carrying record, or ErrLiveOrderNotFound.
func FindLiveOrder(view ledger.View, cfg *SwapConfig) (*ledger.Record, *Order, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	records, err := view.RecordsAt(cfg.Address())
	if err != nil {
		return nil, nil, err
	}
	beacon := cfg.BeaconAsset()
	var live *ledger.Record
	for _, record := range records {
		if record.Value.Quantity(beacon) < 1 {
			continue
		}
		if live != nil {
			return nil, nil, fmt.Errorf("swap: multiple records carry beacon %s", beacon)
		}
		live = record
	}
	if live == nil {
		return nil, nil, ErrLiveOrderNotFound
	}
	order, err := DecodeOrder(live.Datum)
	if err != nil {
		return nil, nil, err
	}
	return live, order, nil
}
