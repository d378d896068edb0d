package crypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettlementMessageCanonicalForm(t *testing.T) {
	msg := SettlementMessage(7, -12, big.NewInt(3050))
	require.Equal(t, "7-123050", string(msg))

	msg = SettlementMessage(1, 0, nil)
	require.Equal(t, "100", string(msg))
}

func TestSignAndVerifySettlement(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	earn := big.NewInt(50)
	sig, err := SignSettlement(key, 1, 100, earn)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	pub := key.PubKey().CompressedBytes()
	require.NoError(t, VerifySettlement(pub, 1, 100, earn, sig))

	// Recovery byte stripped.
	require.NoError(t, VerifySettlement(pub, 1, 100, earn, sig[:64]))

	// Any field change invalidates the attestation.
	require.ErrorIs(t, VerifySettlement(pub, 2, 100, earn, sig), ErrVerificationFailed)
	require.ErrorIs(t, VerifySettlement(pub, 1, 101, earn, sig), ErrVerificationFailed)
	require.ErrorIs(t, VerifySettlement(pub, 1, 100, big.NewInt(51), sig), ErrVerificationFailed)
}

func TestVerifySettlementRejectsBadEncodings(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)
	sig, err := SignSettlement(key, 1, 1, big.NewInt(1))
	require.NoError(t, err)

	require.ErrorIs(t, VerifySettlement([]byte{0x01, 0x02}, 1, 1, big.NewInt(1), sig), ErrInvalidPublicKey)
	pub := key.PubKey().CompressedBytes()
	require.ErrorIs(t, VerifySettlement(pub, 1, 1, big.NewInt(1), sig[:10]), ErrInvalidSignature)
}

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	addr := key.PubKey().Address()
	encoded := addr.String()
	require.Contains(t, encoded, AddressPrefix+"1")

	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, addr.Bytes(), decoded.Bytes())

	_, err = DecodeAddress("cosmos1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq")
	require.Error(t, err)
}
