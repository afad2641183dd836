// Package signer implements the Signature Verifier (C3): it recovers
// the signer address from a maker's signed intent payload and compares
// it case-insensitively to the order's declared maker. Grounded on
// internal/arbitrage/eip712.go / exec/client.go's EIP-712 digest
// construction, inverted here into address recovery rather than
// signing (signing the child order is the Submission Client's job, see
// internal/submit).
package signer

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/oneedge/orderengine/internal/apperrors"
	"github.com/oneedge/orderengine/internal/domain"
)

// CanonicalPayload is the deterministic textual encoding of
// {type, size, params, maker, makerAsset, takerAsset} the maker signs
// client-side, per spec §4.3/§9. Sorted-keys JSON is used rather than
// EIP-712 typed data, matching the teacher's preference for explicit,
// reproducible byte construction over an opaque client-side signer.
func CanonicalPayload(o *domain.Order) ([]byte, error) {
	paramsJSON, err := json.Marshal(o.Params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	// sortedParams re-marshals params with keys sorted, so the payload
	// is byte-stable regardless of struct field order.
	var raw map[string]interface{}
	if err := json.Unmarshal(paramsJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	fmt.Fprintf(&b, "\"maker\":%q,", strings.ToLower(o.Maker))
	fmt.Fprintf(&b, "\"makerAsset\":%q,", strings.ToLower(o.MakerAsset))
	b.WriteString("\"params\":{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		v, _ := json.Marshal(raw[k])
		fmt.Fprintf(&b, "%q:%s", k, v)
	}
	b.WriteString("},")
	fmt.Fprintf(&b, "\"size\":%q,", o.Size.String())
	fmt.Fprintf(&b, "\"takerAsset\":%q,", strings.ToLower(o.TakerAsset))
	fmt.Fprintf(&b, "\"type\":%q", o.Type)
	b.WriteString("}")

	return []byte(b.String()), nil
}

// Verify recovers the signer of signature over the order's canonical
// payload and returns nil iff it matches the declared maker
// (case-insensitive). Any mismatch, malformed signature, or encoding
// failure yields apperrors.ErrSignatureInvalid.
func Verify(o *domain.Order) error {
	payload, err := CanonicalPayload(o)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSignatureInvalid, err)
	}

	sigBytes, err := hexutil.Decode(o.Signature)
	if err != nil || len(sigBytes) != 65 {
		return apperrors.ErrSignatureInvalid
	}

	// Ethereum personal-sign recovery expects v in {0,1}; normalize the
	// 27/28 convention crypto.Sign/clients commonly produce.
	sig := append([]byte(nil), sigBytes...)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := signHash(payload)
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return apperrors.ErrSignatureInvalid
	}

	recovered := crypto.PubkeyToAddress(*pubKey).Hex()
	if !strings.EqualFold(recovered, o.Maker) {
		return apperrors.ErrSignatureInvalid
	}
	return nil
}

// Sign is the maker-side counterpart used by tests and tooling to
// produce a valid o.Signature; production makers sign client-side, the
// engine never holds maker keys.
func Sign(o *domain.Order, priv *ecdsa.PrivateKey) (string, error) {
	payload, err := CanonicalPayload(o)
	if err != nil {
		return "", err
	}
	hash := signHash(payload)
	sig, err := crypto.Sign(hash, priv)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return hexutil.Encode(sig), nil
}

// signHash mirrors Ethereum's personal_sign prefixing
// ("\x19Ethereum Signed Message:\n" + len), the same keccak256-digest
// discipline eip712.go uses for its own domain/struct hashing.
func signHash(data []byte) []byte {
	msg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)
	return crypto.Keccak256([]byte(msg))
}
