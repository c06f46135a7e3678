package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput       = errors.New("email and password are required and email must be valid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const minPasswordLength = 6

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"exp"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Identity  `json:"user"`
}

// Service issues and verifies bearer tokens.
//
// Credentials are not checked against any user store: any well-formed email
// with a password of at least six characters logs in. Tokens are HMAC-signed
// so the owner identity inside them cannot be altered by the client.
type Service struct {
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	now      func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		ttl:      ttl,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Service) Login(email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return LoginResult{}, ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return LoginResult{}, ErrInvalidCredentials
	}

	id := Identity{
		OwnerID: ownerIDFor(email),
		Email:   email,
		Name:    nameFromEmail(email),
	}
	exp := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	token, err := s.sign(claims{Subject: id.OwnerID, Email: id.Email, Name: id.Name, ExpiresAt: exp.Unix()})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: exp, User: id}, nil
}

func (s *Service) Verify(token string) (Identity, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" || sig == "" {
		return Identity{}, ErrInvalidToken
	}

	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, s.mac(payload)) {
		return Identity{}, ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	var c claims
	if err := json.Unmarshal(raw, &c); err != nil || c.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	if s.now().Unix() >= c.ExpiresAt {
		return Identity{}, ErrInvalidToken
	}
	return Identity{OwnerID: c.Subject, Email: c.Email, Name: c.Name}, nil
}

func (s *Service) sign(c claims) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + base64.RawURLEncoding.EncodeToString(s.mac(payload)), nil
}

func (s *Service) mac(payload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}

func ownerIDFor(email string) string {
	sum := sha256.Sum256([]byte(email))
	return "user_" + hex.EncodeToString(sum[:])[:16]
}

// nameFromEmail turns "john.doe@x.io" into "John Doe".
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
