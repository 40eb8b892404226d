package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/securedocs/internal/model"
)

var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

// PublicTokenMessage is the only thing callers outside the server learn
// about a rejected token.
const PublicTokenMessage = "invalid or expired link"

type linkClaims struct {
	jwt.RegisteredClaims
	Action    model.Action `json:"act"`
	FileIndex int          `json:"idx"`
}

// TokenCodec signs and verifies secure link tokens. Tokens are
// base64url(claims) "." base64url(HMAC-SHA256(encoded claims)).
type TokenCodec struct {
	key []byte
	now func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{key: []byte(secret), now: time.Now}
}

// WithClock returns a codec reading time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	return &TokenCodec{key: c.key, now: now}
}

func (c *TokenCodec) Encode(documentID string, action model.Action, fileIndex int, ttl time.Duration) (string, error) {
	if documentID == "" {
		return "", fmt.Errorf("encode token: empty document id")
	}
	if _, err := model.ParseAction(string(action)); err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	if ttl < 0 {
		return "", fmt.Errorf("encode token: negative ttl %s", ttl)
	}

	issued := c.now().Truncate(time.Second)
	claims := linkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   documentID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl.Truncate(time.Second))),
		},
		Action:    action,
		FileIndex: fileIndex,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	sig, err := jwt.SigningMethodHS256.Sign(encoded, c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return encoded + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Decode verifies the signature before looking at the payload. Anything
// that cannot be checked against the MAC (bad escapes, a missing or
// altered separator) counts as a signature failure, so a single altered
// bit anywhere in the token is reported as ErrTokenSignatureInvalid.
// ErrTokenMalformed is left for an empty token and for signed payloads
// whose claims do not parse.
func (c *TokenCodec) Decode(raw string) (*model.SecureLink, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrTokenMalformed)
	}

	raw, err := url.PathUnescape(raw)
	if err != nil {
		return nil, ErrTokenSignatureInvalid
	}

	dot := strings.LastIndexByte(raw, '.')
	if dot <= 0 || dot == len(raw)-1 {
		return nil, ErrTokenSignatureInvalid
	}
	encoded, encodedSig := raw[:dot], raw[dot+1:]

	sig, err := base64.RawURLEncoding.Strict().DecodeString(encodedSig)
	if err != nil {
		return nil, ErrTokenSignatureInvalid
	}

	err = jwt.SigningMethodHS256.Verify(encoded, sig, c.key)
	if err != nil {
		return nil, ErrTokenSignatureInvalid
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", ErrTokenMalformed)
	}

	var claims linkClaims
	err = json.Unmarshal(payload, &claims)
	if err != nil {
		return nil, fmt.Errorf("%w: payload json", ErrTokenMalformed)
	}

	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrTokenMalformed)
	}
	action, err := model.ParseAction(string(claims.Action))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	link := &model.SecureLink{
		DocumentID: claims.Subject,
		Action:     action,
		FileIndex:  claims.FileIndex,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}

	if link.IsExpired(c.now()) {
		return nil, ErrTokenExpired
	}

	return link, nil
}

// IsTokenError reports whether err is one of the token rejection errors.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenSignatureInvalid)
}

// TokenDiagnosis names the rejection kind for logs.
func TokenDiagnosis(err error) string {
	switch {
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	}
	return "unknown"
}

func ViewURL(baseURL, token string) string {
	return secureURL(baseURL, "/secure/view", token)
}

func DownloadURL(baseURL, token string) string {
	return secureURL(baseURL, "/secure/download", token)
}

func secureURL(baseURL, path, token string) string {
	return strings.TrimSuffix(baseURL, "/") + path + "?token=" + url.QueryEscape(token)
}
