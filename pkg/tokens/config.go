package tokens

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes match the usual short-access / long-refresh split.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config is the tagged key configuration for a Service. Build one with
// Symmetric or Asymmetric; the key-selection decision is made here, once,
// never per call and never by looking at token contents.
type Config struct {
	method    jwt.SigningMethod
	signKey   any // []byte for HS256, *rsa.PrivateKey for RS256
	verifyKey any // []byte for HS256, *rsa.PublicKey for RS256
}

// Symmetric configures HS256 with a shared secret. The same secret signs and
// verifies.
func Symmetric(secret []byte) (Config, error) {
	if len(secret) == 0 {
		return Config{}, fmt.Errorf("%w: empty symmetric secret", ErrSigning)
	}
	return Config{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
	}, nil
}

// Asymmetric configures RS256 from PEM-encoded private and public keys. The
// pair is checked for consistency so a mismatched deployment fails at
// construction instead of at the first verify.
func Asymmetric(privatePEM, publicPEM []byte) (Config, error) {
	priv, err := parseRSAPrivateKey(privatePEM)
	if err != nil {
		return Config{}, err
	}
	pub, err := parseRSAPublicKey(publicPEM)
	if err != nil {
		return Config{}, err
	}
	if !priv.PublicKey.Equal(pub) {
		return Config{}, fmt.Errorf("%w: public key does not match private key", ErrSigning)
	}
	return Config{
		method:    jwt.SigningMethodRS256,
		signKey:   priv,
		verifyKey: pub,
	}, nil
}

// Algorithm reports the JWT "alg" value this config signs and verifies with.
func (c Config) Algorithm() string { return c.method.Alg() }

// parseRSAPrivateKey handles both PKCS1 and PKCS8 because otherwise we will
// be chasing a bug for longer than we would be willing to admit.
func parseRSAPrivateKey(pemKey []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("%w: invalid PEM for RSA private key", ErrSigning)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS1: %v", ErrSigning, err)
		}
		return key, nil
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS8: %v", ErrSigning, err)
		}
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", ErrSigning)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unsupported PEM type %q", ErrSigning, block.Type)
	}
}

func parseRSAPublicKey(pemKey []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("%w: invalid PEM for RSA public key", ErrSigning)
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS1 public: %v", ErrSigning, err)
		}
		return key, nil
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKIX: %v", ErrSigning, err)
		}
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", ErrSigning)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unsupported PEM type %q", ErrSigning, block.Type)
	}
}
