package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

type fakeTransport struct {
	hash string
	err  error
	got  ChildOrder
}

func (f *fakeTransport) Submit(ctx context.Context, order ChildOrder) (string, error) {
	f.got = order
	if f.err != nil {
		return "", f.err
	}
	return f.hash, nil
}

func TestSubmitReturnsHashOnSuccess(t *testing.T) {
	ft := &fakeTransport{hash: "0xabc123"}
	priv, _ := crypto.GenerateKey()
	c, err := New(bytesToHex(crypto.FromECDSA(priv)), 137, "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E", ft)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hash, err := c.Submit(context.Background(), "0xMaker", "0xReceiver", "0xWETH", "0xUSDC",
		decimal.NewFromFloat(0.25), decimal.NewFromInt(4000), nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if hash != "0xabc123" {
		t.Fatalf("expected hash passthrough, got %s", hash)
	}
	if ft.got.Maker != "0xMaker" {
		t.Fatalf("expected maker forwarded, got %s", ft.got.Maker)
	}
	if ft.got.Signature == "" {
		t.Fatal("expected order to be signed before submission")
	}
}

func TestSubmitWrapsTransportErrorAsSubmissionFailed(t *testing.T) {
	ft := &fakeTransport{err: errors.New("rpc timeout")}
	priv, _ := crypto.GenerateKey()
	c, err := New(bytesToHex(crypto.FromECDSA(priv)), 137, "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E", ft)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Submit(context.Background(), "0xMaker", "0xReceiver", "0xWETH", "0xUSDC",
		decimal.NewFromFloat(0.25), decimal.NewFromInt(4000), nil)
	if err == nil {
		t.Fatal("expected submission error")
	}
}

func bytesToHex(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
