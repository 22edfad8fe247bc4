package auth

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
)

const (
	// DefaultChallengeTTL bounds how long an unused nonce stays valid
	DefaultChallengeTTL = 5 * time.Minute
	// DefaultTokenTTL bounds the lifetime of issued bearer tokens
	DefaultTokenTTL = 24 * time.Hour
)

// Challenge is an issued single-use nonce the caller must sign. On the wire
// the nonce travels under the "challenge" key.
type Challenge struct {
	DID       string    `json:"did"`
	Nonce     string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChallengePayload is the JSON document the caller signs with personal_sign
// after JCS canonicalization
type ChallengePayload struct {
	DID   string `json:"did"`
	Nonce string `json:"nonce"`
}

// SignedChallenge is the caller's response to a challenge: a compact JWS
// whose payload is the ChallengePayload and whose signature is the EIP-191
// personal_sign output over the payload's JCS canonical form
type SignedChallenge struct {
	JWS string `json:"jws"`
}

// jwsHeader is the protected header of the compact JWS
type jwsHeader struct {
	Alg string `json:"alg"`
}

// jwsAlg names secp256k1 recovery signatures, the scheme did:pkh wallets
// produce
const jwsAlg = "ES256K-R"

// NewSignedChallenge packs a signed payload into the compact JWS the verify
// endpoint accepts. signature is the 0x-prefixed hex personal_sign output
// over the JCS canonical payload.
func NewSignedChallenge(payload ChallengePayload, signature string) (*SignedChallenge, error) {
	sig, err := decodeSignatureHex(signature)
	if err != nil {
		return nil, err
	}
	headerJSON, err := json.Marshal(jwsHeader{Alg: jwsAlg})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jws header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not serializable", domain.ErrValidation)
	}
	jws := strings.Join([]string{
		base64.RawURLEncoding.EncodeToString(headerJSON),
		base64.RawURLEncoding.EncodeToString(payloadJSON),
		base64.RawURLEncoding.EncodeToString(sig),
	}, ".")
	return &SignedChallenge{JWS: jws}, nil
}

// decodeJWS unpacks a compact JWS into its signed payload and raw signature
func decodeJWS(jws string) (*ChallengePayload, []byte, error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 {
		return nil, nil, fmt.Errorf("%w: jws must have three segments", domain.ErrValidation)
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: jws header is not base64url", domain.ErrValidation)
	}
	var header jwsHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("%w: jws header is not JSON", domain.ErrValidation)
	}
	if header.Alg != jwsAlg {
		return nil, nil, fmt.Errorf("%w: unsupported jws algorithm %q", domain.ErrValidation, header.Alg)
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: jws payload is not base64url", domain.ErrValidation)
	}
	var payload ChallengePayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: jws payload is not a challenge payload", domain.ErrValidation)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || len(sig) != 65 {
		return nil, nil, fmt.Errorf("%w: jws signature is not a 65-byte value", domain.ErrValidation)
	}
	return &payload, sig, nil
}

// decodeSignatureHex decodes a 0x-prefixed hex personal_sign signature
func decodeSignatureHex(signature string) ([]byte, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil || len(sig) != 65 {
		return nil, fmt.Errorf("%w: signature is not a 65-byte hex string", domain.ErrValidation)
	}
	return sig, nil
}

// Token is a minted bearer credential
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service implements the DID challenge/verify handshake and bearer token
// lifecycle
//
//go:generate mockgen -source=auth.go -destination=../mocks/auth_service.go -package=mocks -mock_names=Service=MockAuthService
type Service interface {
	// IssueChallenge mints a single-use nonce for the DID
	IssueChallenge(ctx context.Context, did string) (*Challenge, error)

	// VerifyChallenge checks the signature over the canonicalized payload,
	// consumes the nonce and mints a bearer token bound to the DID
	VerifyChallenge(ctx context.Context, signed *SignedChallenge) (*Token, error)

	// VerifyToken validates a bearer token and returns the DID it was
	// issued to
	VerifyToken(token string) (string, error)
}

// Config holds auth service parameters
type Config struct {
	// JWTSecret signs issued bearer tokens
	JWTSecret string
	// ChallengeTTL overrides DefaultChallengeTTL when positive
	ChallengeTTL time.Duration
	// TokenTTL overrides DefaultTokenTTL when positive
	TokenTTL time.Duration
}

// DIDAuthService is the concrete Service
type DIDAuthService struct {
	store        store.Store
	jcs          adapter.JCS
	clock        adapter.Clock
	secret       []byte
	challengeTTL time.Duration
	tokenTTL     time.Duration
}

// NewService creates a DID auth service
func NewService(s store.Store, jcsAdapter adapter.JCS, clock adapter.Clock, cfg Config) *DIDAuthService {
	challengeTTL := cfg.ChallengeTTL
	if challengeTTL <= 0 {
		challengeTTL = DefaultChallengeTTL
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &DIDAuthService{
		store:        s,
		jcs:          jcsAdapter,
		clock:        clock,
		secret:       []byte(cfg.JWTSecret),
		challengeTTL: challengeTTL,
		tokenTTL:     tokenTTL,
	}
}

// IssueChallenge implements Service
func (a *DIDAuthService) IssueChallenge(ctx context.Context, did string) (*Challenge, error) {
	if did == "" {
		return nil, fmt.Errorf("%w: did is required", domain.ErrValidation)
	}
	if !domain.DID(did).Valid() {
		return nil, fmt.Errorf("%w: %q is not a well-formed DID", domain.ErrValidation, did)
	}

	nonce := uuid.NewString()
	expiresAt := a.clock.Now().UTC().Add(a.challengeTTL)

	if err := a.store.CreateAuthChallenge(ctx, &schema.AuthChallenge{
		DID:       did,
		Nonce:     nonce,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist auth challenge: %w", err)
	}

	logger.InfoCtx(ctx, "auth challenge issued", zap.String("did", did))

	return &Challenge{
		DID:       did,
		Nonce:     nonce,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyChallenge implements Service
func (a *DIDAuthService) VerifyChallenge(ctx context.Context, signed *SignedChallenge) (*Token, error) {
	if signed == nil || signed.JWS == "" {
		return nil, fmt.Errorf("%w: jws is required", domain.ErrValidation)
	}

	payload, sig, err := decodeJWS(signed.JWS)
	if err != nil {
		return nil, err
	}
	if payload.DID == "" || payload.Nonce == "" {
		return nil, fmt.Errorf("%w: payload did and nonce are required", domain.ErrValidation)
	}

	did := domain.DID(payload.DID)
	if !did.Valid() {
		return nil, fmt.Errorf("%w: %q is not a well-formed DID", domain.ErrValidation, payload.DID)
	}

	recovered, err := a.recoverSigner(payload, sig)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(recovered, did.Address()) {
		return nil, fmt.Errorf("%w: signature does not match DID address", domain.ErrUnauthorized)
	}

	// The nonce burns atomically; replays of the same signed challenge fail
	// here even under concurrent verification.
	consumed, err := a.store.ConsumeAuthChallenge(ctx, payload.DID, payload.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to consume auth challenge: %w", err)
	}
	if !consumed {
		return nil, fmt.Errorf("%w: unknown or expired challenge", domain.ErrUnauthorized)
	}

	token, err := a.mintToken(payload.DID)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "auth challenge verified", zap.String("did", payload.DID))
	return token, nil
}

// recoverSigner returns the EVM address that produced the personal_sign
// signature over the JCS canonical form of the payload
func (a *DIDAuthService) recoverSigner(payload *ChallengePayload, sig []byte) (string, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: payload is not serializable", domain.ErrValidation)
	}
	canonical, err := a.jcs.Transform(payloadJSON)
	if err != nil {
		return "", fmt.Errorf("%w: payload is not canonicalizable", domain.ErrValidation)
	}

	// wallets emit V as 27/28, go-ethereum expects 0/1
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(canonical), normalized)
	if err != nil {
		return "", fmt.Errorf("%w: signature recovery failed", domain.ErrUnauthorized)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

func (a *DIDAuthService) mintToken(did string) (*Token, error) {
	now := a.clock.Now().UTC()
	expiresAt := now.Add(a.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   did,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{Token: signed, ExpiresAt: expiresAt}, nil
}

// VerifyToken implements Service
func (a *DIDAuthService) VerifyToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: token carries no subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}
