package ledger

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
)

// Network selects the passphrase transactions are bound to.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkPublic  Network = "public"
)

const (
	testnetPassphrase = "Test SDF Network ; September 2015"
	publicPassphrase  = "Public Global Stellar Network ; September 2015"

	// BaseFee is charged per operation.
	BaseFee = 100
	// ValidityWindow bounds how long a signed transaction stays submittable.
	ValidityWindow = 30 * time.Second
)

// ParseNetwork accepts the configured network name; empty means testnet.
func ParseNetwork(raw string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(raw))) {
	case "", NetworkTestnet:
		return NetworkTestnet, nil
	case NetworkPublic:
		return NetworkPublic, nil
	default:
		return "", fmt.Errorf("unknown ledger network %q", raw)
	}
}

// Passphrase returns the network passphrase hashed into every signature.
func (n Network) Passphrase() string {
	if n == NetworkPublic {
		return publicPassphrase
	}
	return testnetPassphrase
}

// ID is the BLAKE3 digest of the network passphrase.
func (n Network) ID() [32]byte {
	return blake3.Sum256([]byte(n.Passphrase()))
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("ledger: CBOR encoder initialization failed: " + err.Error())
	}
}

// ErrInvalidSeed reports a signing secret that is not a base58 ed25519 seed.
var ErrInvalidSeed = errors.New("invalid ledger signing seed")

// Keypair signs transactions for one ledger account.
type Keypair struct {
	private ed25519.PrivateKey
}

// KeypairFromSeed decodes a base58 encoded 32 byte ed25519 seed.
func KeypairFromSeed(seed string) (*Keypair, error) {
	raw, err := base58.Decode(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSeed, ed25519.SeedSize, len(raw))
	}
	return &Keypair{private: ed25519.NewKeyFromSeed(raw)}, nil
}

// Address is the base58 public key identifying the account.
func (k *Keypair) Address() string {
	return base58.Encode(k.private.Public().(ed25519.PublicKey))
}

func (k *Keypair) sign(digest []byte) []byte {
	return ed25519.Sign(k.private, digest)
}

// ManageData sets or clears one named entry on the source account.
type ManageData struct {
	Name  string `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint,omitempty"`
}

// TimeBounds limits the window in which the network accepts the transaction.
type TimeBounds struct {
	MinTime int64 `cbor:"1,keyasint"`
	MaxTime int64 `cbor:"2,keyasint"`
}

// Transaction is the unsigned body. Field order and integer keys are part of the wire format.
type Transaction struct {
	Source     string       `cbor:"1,keyasint"`
	Sequence   int64        `cbor:"2,keyasint"`
	Fee        uint32       `cbor:"3,keyasint"`
	TimeBounds TimeBounds   `cbor:"4,keyasint"`
	Operations []ManageData `cbor:"5,keyasint"`
}

// Envelope carries a transaction with its signatures.
type Envelope struct {
	Transaction Transaction `cbor:"1,keyasint"`
	Signatures  [][]byte    `cbor:"2,keyasint"`
}

// NewTransaction builds a manage-data transaction valid until now+ValidityWindow.
func NewTransaction(source string, sequence int64, now time.Time, ops ...ManageData) Transaction {
	return Transaction{
		Source:     source,
		Sequence:   sequence,
		Fee:        uint32(BaseFee * len(ops)),
		TimeBounds: TimeBounds{MaxTime: now.Add(ValidityWindow).Unix()},
		Operations: ops,
	}
}

// Hash is BLAKE3(networkID || CBOR(tx)).
func (tx Transaction) Hash(network Network) ([32]byte, error) {
	body, err := encMode.Marshal(tx)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode transaction: %w", err)
	}
	id := network.ID()
	hasher := blake3.New()
	_, _ = hasher.Write(id[:])
	_, _ = hasher.Write(body)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// Sign hashes the transaction for network and returns a signed envelope.
func Sign(tx Transaction, network Network, key *Keypair) (Envelope, error) {
	if key == nil {
		return Envelope{}, ErrInvalidSeed
	}
	digest, err := tx.Hash(network)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Transaction: tx, Signatures: [][]byte{key.sign(digest[:])}}, nil
}

// Encode returns the base64 form submitted to the gateway.
func (e Envelope) Encode() (string, error) {
	raw, err := encMode.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Verify checks the first signature against the source account key.
func (e Envelope) Verify(network Network) (bool, error) {
	if len(e.Signatures) == 0 {
		return false, nil
	}
	public, err := base58.Decode(e.Transaction.Source)
	if err != nil || len(public) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid source account %q", e.Transaction.Source)
	}
	digest, err := e.Transaction.Hash(network)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(ed25519.PublicKey(public), digest[:], e.Signatures[0]), nil
}

// DecodeEnvelope parses the base64 CBOR envelope form.
func DecodeEnvelope(encoded string) (Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	var env Envelope
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
