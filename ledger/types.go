package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"openswap/core/types"
	"openswap/crypto"
)

var (
	// ErrRejected is returned by Submit when a consumed record is no longer
	// unspent. The caller saw stale state and must re-run discovery before
	// resubmitting; the ledger provides no further structured reason.
	ErrRejected = errors.New("ledger: stale state - retry")
	// ErrUnbalanced is returned when a transition's inputs plus mints do not
	// equal its outputs.
	ErrUnbalanced = errors.New("ledger: transition does not balance")
	// ErrUnknownRecord is returned when a record id cannot be resolved.
	ErrUnknownRecord = errors.New("ledger: unknown record")
)

// RecordID names one unspent record: the transition that produced it and the
// output position within that transition.
type RecordID struct {
	TxID  [32]byte
	Index uint32
}

func (id RecordID) String() string {
	return hex.EncodeToString(id.TxID[:]) + "#" + strconv.FormatUint(uint64(id.Index), 10)
}

// MarshalText renders the id as "txid#index".
func (id RecordID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (id *RecordID) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "#", 2)
	if len(parts) != 2 {
		return fmt.Errorf("ledger: malformed record id %q", text)
	}
	raw, err := hex.DecodeString(parts[0])
	if err != nil || len(raw) != len(id.TxID) {
		return fmt.Errorf("ledger: malformed record id %q", text)
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return fmt.Errorf("ledger: malformed record id %q", text)
	}
	copy(id.TxID[:], raw)
	id.Index = uint32(index)
	return nil
}

// Record is one unspent, atomic ledger entry: a value locked at an address,
// optionally with structured data attached.
type Record struct {
	ID      RecordID       `json:"id"`
	Address crypto.Address `json:"address"`
	Value   types.Value    `json:"value"`
	Datum   []byte         `json:"datum,omitempty"`
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Value = r.Value.Clone()
	clone.Datum = append([]byte(nil), r.Datum...)
	return &clone
}

// Output is a proposed record: the value and datum a transition wants to lock
// at an address. The record id is assigned at acceptance.
type Output struct {
	Address crypto.Address `json:"address"`
	Value   types.Value    `json:"value"`
	Datum   []byte         `json:"datum,omitempty"`
}

// Mint instructs the ledger to create (positive quantity) or destroy
// (negative quantity) tokens of an asset class as part of a transition.
type Mint struct {
	Policy   types.PolicyID `json:"policy"`
	Name     string         `json:"name"`
	Quantity int64          `json:"quantity"`
}

// Asset returns the asset identifier minted or burned by the instruction.
func (m Mint) Asset() types.AssetID {
	return types.AssetID{Policy: m.Policy, Name: m.Name}
}

// Transition is a proposed atomic state change, ready for signing and
// submission by the external wallet collaborator. It either takes effect as a
// whole or not at all.
type Transition struct {
	Consumes []RecordID
	Produces []Output
	Mints    []Mint
	// Signers lists every identity whose signature the on-chain validator
	// requires. The core only declares them; it never signs.
	Signers []crypto.Address
}

// AddSigner appends an identity to the required-signer set, skipping
// duplicates.
func (t *Transition) AddSigner(addr crypto.Address) {
	for _, existing := range t.Signers {
		if existing == addr {
			return
		}
	}
	t.Signers = append(t.Signers, addr)
}

// View is the read side of the ledger collaborator.
type View interface {
	// RecordsAt returns every unspent record locked at the address.
	RecordsAt(addr crypto.Address) ([]*Record, error)
	// Record resolves a single unspent record by id.
	Record(id RecordID) (*Record, bool, error)
}

// Ledger is the full collaborator surface the core depends on: reads plus
// atomic submission. Acceptance is optimistic-concurrency: a transition is
// accepted only if every record it consumes is still unspent.
type Ledger interface {
	View
	Submit(t *Transition) ([32]byte, error)
}
