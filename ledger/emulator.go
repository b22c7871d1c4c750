package ledger

import (
	"encoding/json"
	"fmt"
	"sync"

	"openswap/core/types"
	"openswap/crypto"
	"openswap/storage"
)

const (
	recordKeyPrefix = "rec/"
	indexKeyPrefix  = "adr/"
)

// Emulator is an in-process ledger used by tests and the simulator. It keeps
// only the unspent record set, serializes acceptance under a single mutex and
// enforces the structural rules a real chain's validators would: consumed
// records must be unspent, outputs must be non-negative, and inputs plus
// mints must equal outputs. Script-level validation and signatures stay with
// the external VM collaborator and are not modeled here.
type Emulator struct {
	mu    sync.Mutex
	db    storage.Database
	nonce uint64
}

// NewEmulator constructs an emulator over the given backing store.
func NewEmulator(db storage.Database) *Emulator {
	return &Emulator{db: db}
}

// Faucet creates a genesis record holding the given value at the address,
// bypassing balance checks. Test and simulator setup only.
func (e *Emulator) Faucet(addr crypto.Address, value types.Value) (*Record, error) {
	if err := value.AssertAllPositive(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nonce++
	txID := crypto.DeriveID("openswap.faucet", addr.Bytes(), []byte(fmt.Sprintf("%d", e.nonce)))
	record := &Record{
		ID:      RecordID{TxID: txID, Index: 0},
		Address: addr,
		Value:   value.Clone(),
	}
	if err := e.putRecord(record); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// RecordsAt returns every unspent record locked at the address, in key order.
func (e *Emulator) RecordsAt(addr crypto.Address) ([]*Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var records []*Record
	prefix := []byte(indexKeyPrefix + addr.String() + "/")
	var iterErr error
	err := e.db.IteratePrefix(prefix, func(key, _ []byte) bool {
		idText := key[len(prefix):]
		var id RecordID
		if err := id.UnmarshalText(idText); err != nil {
			iterErr = err
			return false
		}
		record, ok, err := e.record(id)
		if err != nil {
			iterErr = err
			return false
		}
		if ok {
			records = append(records, record)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return records, nil
}

// Record resolves a single unspent record by id.
func (e *Emulator) Record(id RecordID) (*Record, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(id)
}

// Submit validates the transition and applies it atomically. On success the
// consumed records are destroyed, the produced records exist, and the
// transition id is returned. A consumed record that is already spent rejects
// the whole transition with ErrRejected.
func (e *Emulator) Submit(t *Transition) ([32]byte, error) {
	if t == nil {
		return [32]byte{}, fmt.Errorf("ledger: nil transition")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	consumed := make([]*Record, 0, len(t.Consumes))
	seen := make(map[RecordID]bool, len(t.Consumes))
	for _, id := range t.Consumes {
		if seen[id] {
			return [32]byte{}, fmt.Errorf("%w: duplicate input %s", ErrRejected, id)
		}
		seen[id] = true
		record, ok, err := e.record(id)
		if err != nil {
			return [32]byte{}, err
		}
		if !ok {
			return [32]byte{}, fmt.Errorf("%w: input %s already spent", ErrRejected, id)
		}
		consumed = append(consumed, record)
	}

	balance := types.Value{}
	for _, record := range consumed {
		balance = balance.Add(record.Value)
	}
	for _, mint := range t.Mints {
		if mint.Policy.IsNative() {
			return [32]byte{}, fmt.Errorf("ledger: cannot mint the native coin")
		}
		balance = balance.Add(types.NewAssetValue(mint.Asset(), mint.Quantity))
	}
	for _, output := range t.Produces {
		if err := output.Value.AssertAllPositive(); err != nil {
			return [32]byte{}, err
		}
		balance = balance.Sub(output.Value)
	}
	if !balance.IsZero() {
		return [32]byte{}, fmt.Errorf("%w: residual %s", ErrUnbalanced, balance)
	}

	txID := e.transitionID(t)
	for _, record := range consumed {
		if err := e.deleteRecord(record); err != nil {
			return [32]byte{}, err
		}
	}
	for i, output := range t.Produces {
		record := &Record{
			ID:      RecordID{TxID: txID, Index: uint32(i)},
			Address: output.Address,
			Value:   output.Value.Clone(),
			Datum:   append([]byte(nil), output.Datum...),
		}
		if err := e.putRecord(record); err != nil {
			return [32]byte{}, err
		}
	}
	return txID, nil
}

// transitionID derives a deterministic id from the transition content.
func (e *Emulator) transitionID(t *Transition) [32]byte {
	fields := make([][]byte, 0, len(t.Consumes)+len(t.Produces)+len(t.Mints))
	for _, id := range t.Consumes {
		fields = append(fields, []byte(id.String()))
	}
	for _, output := range t.Produces {
		encoded, _ := json.Marshal(output)
		fields = append(fields, encoded)
	}
	for _, mint := range t.Mints {
		encoded, _ := json.Marshal(mint)
		fields = append(fields, encoded)
	}
	return crypto.DeriveID("openswap.transition", fields...)
}

func (e *Emulator) record(id RecordID) (*Record, bool, error) {
	raw, err := e.db.Get(recordKey(id))
	if err == storage.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (e *Emulator) putRecord(record *Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := e.db.Put(recordKey(record.ID), raw); err != nil {
		return err
	}
	return e.db.Put(indexKey(record.Address, record.ID), nil)
}

func (e *Emulator) deleteRecord(record *Record) error {
	if err := e.db.Delete(recordKey(record.ID)); err != nil {
		return err
	}
	return e.db.Delete(indexKey(record.Address, record.ID))
}

func recordKey(id RecordID) []byte {
	return []byte(recordKeyPrefix + id.String())
}

func indexKey(addr crypto.Address, id RecordID) []byte {
	return []byte(indexKeyPrefix + addr.String() + "/" + id.String())
}
