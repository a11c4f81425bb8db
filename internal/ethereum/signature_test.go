package ethereum

import (
	"crypto/ecdsa"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// personalSign 按 personal_sign 规则对消息签名
func personalSign(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()

	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := crypto.Keccak256Hash([]byte(prefixed))

	sig, err := crypto.Sign(hash.Bytes(), key)
	require.NoError(t, err)

	// 钱包返回的v为27/28
	sig[64] += 27
	return hexutil.Encode(sig)
}

func TestVerifyPersonalSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	message := "tiku-connect-abc123"
	signature := personalSign(t, key, message)

	ok, err := VerifyPersonalSignature(address, message, signature)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPersonalSignatureWrongAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherAddress := crypto.PubkeyToAddress(otherKey.PublicKey).Hex()

	signature := personalSign(t, key, "tiku-connect-abc123")

	ok, err := VerifyPersonalSignature(otherAddress, "tiku-connect-abc123", signature)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPersonalSignatureWrongMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	signature := personalSign(t, key, "tiku-connect-abc123")

	ok, err := VerifyPersonalSignature(address, "tiku-connect-other", signature)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPersonalSignatureMalformed(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	_, err = VerifyPersonalSignature(address, "msg", "not-hex")
	assert.Error(t, err)

	_, err = VerifyPersonalSignature(address, "msg", "0x1234")
	assert.Error(t, err)

	_, err = VerifyPersonalSignature("not-an-address", "msg", personalSign(t, key, "msg"))
	assert.Error(t, err)
}
