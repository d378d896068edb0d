package crypto

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SettlementContext is the domain-separation tag mixed into every settlement
// digest so a settlement signature can never be replayed as any other kind of
// message.
const SettlementContext = "animalrogue/settlement/v1"

var (
	// ErrInvalidPublicKey indicates the configured verifier key could not be
	// decoded as a secp256k1 public key.
	ErrInvalidPublicKey = errors.New("attestation: invalid public key")
	// ErrInvalidSignature indicates a malformed signature encoding.
	ErrInvalidSignature = errors.New("attestation: invalid signature encoding")
	// ErrVerificationFailed indicates the signature does not match the
	// settlement payload under the configured key.
	ErrVerificationFailed = errors.New("attestation: verification failed")
)

// SettlementMessage builds the canonical attestation message for a session
// settlement: the decimal text of the game id, score and the original,
// unclamped earn concatenated with no separators.
func SettlementMessage(gameID uint64, score int64, earn *big.Int) []byte {
	amount := "0"
	if earn != nil {
		amount = earn.String()
	}
	msg := strconv.FormatUint(gameID, 10) + strconv.FormatInt(score, 10) + amount
	return []byte(msg)
}

// SettlementDigest hashes the canonical message under the settlement context
// tag.
func SettlementDigest(gameID uint64, score int64, earn *big.Int) []byte {
	return ethcrypto.Keccak256([]byte(SettlementContext), SettlementMessage(gameID, score, earn))
}

// VerifySettlement checks a settlement signature against the supplied
// compressed or uncompressed secp256k1 public key. Signatures may carry a
// trailing recovery byte, which is ignored.
func VerifySettlement(publicKey []byte, gameID uint64, score int64, earn *big.Int, sig []byte) error {
	switch len(publicKey) {
	case 33:
		if _, err := ethcrypto.DecompressPubkey(publicKey); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
	case 65:
		key, err := ethcrypto.UnmarshalPubkey(publicKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		publicKey = ethcrypto.CompressPubkey(key)
	default:
		return fmt.Errorf("%w: unexpected length %d", ErrInvalidPublicKey, len(publicKey))
	}
	switch len(sig) {
	case 64:
	case 65:
		sig = sig[:64]
	default:
		return fmt.Errorf("%w: unexpected length %d", ErrInvalidSignature, len(sig))
	}
	digest := SettlementDigest(gameID, score, earn)
	if !ethcrypto.VerifySignature(publicKey, digest, sig) {
		return ErrVerificationFailed
	}
	return nil
}

// SignSettlement produces a settlement attestation over (gameID, score, earn).
// The returned signature includes the recovery byte, which verification
// tolerates and discards.
func SignSettlement(key *PrivateKey, gameID uint64, score int64, earn *big.Int) ([]byte, error) {
	if key == nil || key.PrivateKey == nil {
		return nil, errors.New("attestation: signing key required")
	}
	return ethcrypto.Sign(SettlementDigest(gameID, score, earn), key.PrivateKey)
}
