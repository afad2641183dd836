// Package submit implements the Submission Client (C4): it builds,
// signs and submits a concrete child limit order, returning an opaque
// hash. Generalized from internal/arbitrage/eip712.go's CTFOrder/
// OrderSigner (EIP-712 signing with the operator key) and
// exec/client.go's post/doRequest HTTP submission pattern.
package submit

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/apperrors"
)

// ChildOrder is the concrete on-chain limit order the engine submits on
// the maker's behalf, matching spec §6's submission interface shape.
type ChildOrder struct {
	MakerAsset    string
	TakerAsset    string
	MakingAmount  decimal.Decimal
	TakingAmount  decimal.Decimal
	Maker         string
	Receiver      string
	Salt          string
	Expiry        *time.Time
	Signature     string
}

// Transport abstracts the upstream protocol's order-submission endpoint
// so tests can substitute a fake without a network round trip; the
// default is httpTransport, grounded on exec/client.go's post/doRequest.
type Transport interface {
	Submit(ctx context.Context, order ChildOrder) (hash string, err error)
}

// Client signs child orders with the operator key and submits them
// through a Transport. The engine treats the returned hash as opaque;
// no retry budget exists at this layer beyond the single attempt
// Transport.Submit makes (spec §4.4).
type Client struct {
	privateKey      *ecdsa.PrivateKey
	operatorAddress common.Address
	chainID         int64
	exchangeAddr    string
	transport       Transport
}

func New(privateKeyHex string, chainID int64, exchangeAddr string, transport Transport) (*Client, error) {
	pk, err := crypto.HexToECDSA(trimHexPrefix(privateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("invalid operator private key: %w", err)
	}
	return &Client{
		privateKey:      pk,
		operatorAddress: crypto.PubkeyToAddress(pk.PublicKey),
		chainID:         chainID,
		exchangeAddr:    exchangeAddr,
		transport:       transport,
	}, nil
}

// Submit builds, signs and submits a concrete limit order sized
// childAmount at limitPrice for the given parent order's asset pair.
// Returns apperrors.SubmissionFailedError on a signing failure or a
// transport error (including an upstream rejection); no policy checks,
// such as a gas-price ceiling, are applied here.
func (c *Client) Submit(ctx context.Context, maker, receiver, makerAsset, takerAsset string, childAmount, limitPrice decimal.Decimal, expiry *time.Time) (string, error) {
	makingAmount := childAmount
	takingAmount := childAmount.Mul(limitPrice)

	order := ChildOrder{
		MakerAsset:   makerAsset,
		TakerAsset:   takerAsset,
		MakingAmount: makingAmount,
		TakingAmount: takingAmount,
		Maker:        maker,
		Receiver:     receiver,
		Salt:         generateSalt(),
		Expiry:       expiry,
	}

	sig, err := c.sign(order)
	if err != nil {
		return "", apperrors.NewSubmissionFailed(fmt.Sprintf("signing failed: %v", err))
	}
	order.Signature = sig

	hash, err := c.transport.Submit(ctx, order)
	if err != nil {
		log.Error().Err(err).Str("maker", maker).Msg("child order submission failed")
		return "", apperrors.NewSubmissionFailed(err.Error())
	}

	log.Info().Str("hash", hash).Str("maker", maker).Str("amount", makingAmount.String()).Msg("child order submitted")
	return hash, nil
}

// sign builds the EIP-712 domain/struct hash and signs it with the
// operator key, the same "\x19\x01"+domainSeparator+structHash digest
// construction as eip712.go / exec/client.go's signOrderEIP712.
func (c *Client) sign(order ChildOrder) (string, error) {
	domainSeparator := domainSeparator(c.exchangeAddr, c.chainID)
	structHash := orderStructHash(order)

	var data []byte
	data = append(data, []byte("\x19\x01")...)
	data = append(data, domainSeparator[:]...)
	data = append(data, structHash[:]...)

	digest := crypto.Keccak256(data)
	sig, err := crypto.Sign(digest, c.privateKey)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return hexutil.Encode(sig), nil
}

func domainSeparator(contractAddr string, chainID int64) [32]byte {
	domainTypeHash := crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	nameHash := crypto.Keccak256([]byte("OneEdge Order Engine"))
	versionHash := crypto.Keccak256([]byte("1"))

	chainIDBytes := common.LeftPadBytes(big.NewInt(chainID).Bytes(), 32)
	contractPadded := common.LeftPadBytes(common.HexToAddress(contractAddr).Bytes(), 32)

	var data []byte
	data = append(data, domainTypeHash...)
	data = append(data, nameHash...)
	data = append(data, versionHash...)
	data = append(data, chainIDBytes...)
	data = append(data, contractPadded...)

	var out [32]byte
	copy(out[:], crypto.Keccak256(data))
	return out
}

func orderStructHash(o ChildOrder) [32]byte {
	typeHash := crypto.Keccak256([]byte("ChildOrder(address maker,address receiver,address makerAsset,address takerAsset,uint256 makingAmount,uint256 takingAmount,uint256 salt)"))

	maker := common.LeftPadBytes(common.HexToAddress(o.Maker).Bytes(), 32)
	receiver := common.LeftPadBytes(common.HexToAddress(o.Receiver).Bytes(), 32)
	makerAsset := common.LeftPadBytes(common.HexToAddress(o.MakerAsset).Bytes(), 32)
	takerAsset := common.LeftPadBytes(common.HexToAddress(o.TakerAsset).Bytes(), 32)
	makingAmount := common.LeftPadBytes(o.MakingAmount.BigInt().Bytes(), 32)
	takingAmount := common.LeftPadBytes(o.TakingAmount.BigInt().Bytes(), 32)
	salt := common.LeftPadBytes(parseSalt(o.Salt).Bytes(), 32)

	var data []byte
	data = append(data, typeHash...)
	data = append(data, maker...)
	data = append(data, receiver...)
	data = append(data, makerAsset...)
	data = append(data, takerAsset...)
	data = append(data, makingAmount...)
	data = append(data, takingAmount...)
	data = append(data, salt...)

	var out [32]byte
	copy(out[:], crypto.Keccak256(data))
	return out
}

func parseSalt(s string) *big.Int {
	n := new(big.Int)
	n.SetString(s, 10)
	return n
}

func generateSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return new(big.Int).SetBytes(b).String()
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}

// httpTransport is the default Transport, submitting the signed child
// order as a JSON POST, grounded on exec/client.go's post/doRequest.
type httpTransport struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPTransport(baseURL string, timeout time.Duration) Transport {
	return &httpTransport{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *httpTransport) Submit(ctx context.Context, order ChildOrder) (string, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/order", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		OrderHash string `json:"orderHash"`
		ErrorMsg  string `json:"errorMsg"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if result.ErrorMsg != "" {
		return "", fmt.Errorf("upstream rejection: %s", result.ErrorMsg)
	}

	return result.OrderHash, nil
}
