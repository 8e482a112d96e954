package hyperliquid

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vmihailenco/msgpack/v5"
)

// Signer produces the venue's phantom-agent signatures for L1 actions: the
// msgpack encoding of the action plus the nonce is keccak-hashed into a
// connectionId, which is then signed as EIP-712 typed data.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	// source discriminates mainnet ("a") from testnet ("b") deployments.
	source string
}

// NewSigner parses a hex private key (with or without 0x prefix).
func NewSigner(hexKey string, testnet bool) (*Signer, error) {
	if len(hexKey) > 2 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key failed: %w", err)
	}
	source := "a"
	if testnet {
		source = "b"
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		source:  source,
	}, nil
}

// Address returns the signing wallet's address.
func (s *Signer) Address() common.Address {
	return s.address
}

// actionHash computes keccak256(msgpack(action) || nonce_be8 || 0x00).
// The trailing zero byte marks the no-vault case.
func actionHash(action any, nonce uint64) (common.Hash, error) {
	packed, err := msgpack.Marshal(action)
	if err != nil {
		return common.Hash{}, fmt.Errorf("msgpack encode failed: %w", err)
	}
	data := make([]byte, 0, len(packed)+9)
	data = append(data, packed...)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	data = append(data, nonceBytes[:]...)
	data = append(data, 0x00)
	return crypto.Keccak256Hash(data), nil
}

// agentDigest builds the final EIP-712 digest for a phantom agent carrying
// the given connectionId.
func agentDigest(source string, connectionID common.Hash) (common.Hash, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: common.Address{}.Hex(),
		},
		Message: map[string]any{
			"source":       source,
			"connectionId": connectionID.Bytes(),
		},
	}
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing domain failed: %w", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing message failed: %w", err)
	}
	raw := []byte("\x19\x01")
	raw = append(raw, domainSeparator...)
	raw = append(raw, messageHash...)
	return crypto.Keccak256Hash(raw), nil
}

// SignL1Action signs one exchange action under the given nonce.
func (s *Signer) SignL1Action(action any, nonce uint64) (rsvSignature, error) {
	hash, err := actionHash(action, nonce)
	if err != nil {
		return rsvSignature{}, err
	}
	digest, err := agentDigest(s.source, hash)
	if err != nil {
		return rsvSignature{}, err
	}
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return rsvSignature{}, fmt.Errorf("signing failed: %w", err)
	}
	return rsvSignature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: sig[64] + 27,
	}, nil
}

// recoverDigestSigner recovers the signing address from an r/s/v signature
// over a digest. Test-only helper proving round-trip correctness without a
// live venue.
func recoverDigestSigner(digest common.Hash, sig rsvSignature) (common.Address, error) {
	r, err := hexutil.Decode(sig.R)
	if err != nil {
		return common.Address{}, err
	}
	sBytes, err := hexutil.Decode(sig.S)
	if err != nil {
		return common.Address{}, err
	}
	compact := make([]byte, 65)
	copy(compact[32-len(r):32], r)
	copy(compact[64-len(sBytes):64], sBytes)
	compact[64] = sig.V - 27
	pub, err := crypto.SigToPub(digest.Bytes(), compact)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
