package escrow

import (
	"openswap/crypto"
	"openswap/ledger"
)

// FindRecord locates the escrow deposit matching (orderID, buyer, seller) at
// the configuration's address. Exactly one such record can exist because the
// order id is a content hash over the deposit and its nonce.
func FindRecord(view ledger.View, cfg *EscrowConfig, orderID OrderID, buyer, seller crypto.Address) (*ledger.Record, *Record, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	records, err := view.RecordsAt(cfg.Address())
	if err != nil {
		return nil, nil, err
	}
	for _, candidate := range records {
		datum, err := DecodeRecord(candidate.Datum)
		if err != nil {
			continue
		}
		if datum.OrderID == orderID && datum.Buyer == buyer && datum.Seller == seller {
			return candidate, datum, nil
		}
	}
	return nil, nil, ErrRecordNotFound
}
