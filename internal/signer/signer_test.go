package signer

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

func testOrder(t *testing.T, maker string) *domain.Order {
	t.Helper()
	return &domain.Order{
		ID:         "order-1",
		Type:       domain.OrderTypeTWAP,
		Maker:      maker,
		MakerAsset: "0xWETH",
		TakerAsset: "0xUSDC",
		Size:       decimal.NewFromFloat(1.0),
		Params:     domain.Params{Amount: decimal.NewFromFloat(1.0)},
	}
}

func TestVerifyAcceptsMatchingSignature(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	o := testOrder(t, addr)
	sig, err := Sign(o, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	o.Signature = sig

	if err := Verify(o); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyIsCaseInsensitive(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	o := testOrder(t, strings.ToUpper(addr))
	sig, err := Sign(o, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	o.Signature = sig

	if err := Verify(o); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	otherAddr := crypto.PubkeyToAddress(other.PublicKey).Hex()

	o := testOrder(t, otherAddr)
	sig, err := Sign(o, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	o.Signature = sig

	if err := Verify(o); err == nil {
		t.Fatal("expected signature mismatch error")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	o := testOrder(t, addr)
	sig, err := Sign(o, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	o.Signature = sig

	o.Size = decimal.NewFromFloat(2.0) // tamper after signing

	if err := Verify(o); err == nil {
		t.Fatal("expected tampered payload to fail verification")
	}
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	o := testOrder(t, "0x0000000000000000000000000000000000dEaD")
	o.Signature = "not-hex"

	if err := Verify(o); err == nil {
		t.Fatal("expected malformed signature to fail verification")
	}
}
