package util

import (
	"errors"
	"math/big"
)

const b58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var b58Index [128]int8

func init() {
	for i := range b58Index {
		b58Index[i] = -1
	}
	for i, c := range b58Alphabet {
		b58Index[c] = int8(i)
	}
}

// DecodeBase58 decodes a base58 string into raw bytes.
func DecodeBase58(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, errors.New("empty base58 string")
	}

	result := big.NewInt(0)
	radix := big.NewInt(58)

	for _, c := range s {
		if c >= 128 || b58Index[c] < 0 {
			return nil, errors.New("invalid base58 character: " + string(c))
		}
		result.Mul(result, radix)
		result.Add(result, big.NewInt(int64(b58Index[c])))
	}

	decoded := result.Bytes()

	// Leading '1's encode leading zero bytes.
	zeros := 0
	for _, c := range s {
		if c != '1' {
			break
		}
		zeros++
	}

	return append(make([]byte, zeros), decoded...), nil
}

// AddressValid checks if addr is a well formed account address,
// a base58 encoding of exactly 32 bytes.
func AddressValid(addr string) bool {
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}

	buffer, err := DecodeBase58(addr)
	if err != nil {
		return false
	}

	return len(buffer) == 32
}

// SignatureValid checks if sig is a well formed transaction
// signature, a base58 encoding of exactly 64 bytes.
func SignatureValid(sig string) bool {
	if len(sig) < 64 || len(sig) > 90 {
		return false
	}

	buffer, err := DecodeBase58(sig)
	if err != nil {
		return false
	}

	return len(buffer) == 64
}
