package artifact

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const artifactClaim = "artifact_id"

// DownloadToken signs and verifies short-lived download links for one artifact.
type DownloadToken struct {
	secretKey []byte
	ttl       time.Duration
}

// NewDownloadToken returns nil when secret is empty, which disables token checks.
func NewDownloadToken(secret string) *DownloadToken {
	if secret == "" {
		return nil
	}
	return &DownloadToken{secretKey: []byte(secret), ttl: time.Hour}
}

func (dt *DownloadToken) WithTTL(ttl time.Duration) *DownloadToken {
	if dt != nil && ttl > 0 {
		dt.ttl = ttl
	}
	return dt
}

// Enabled reports whether downloads require a token.
func (dt *DownloadToken) Enabled() bool {
	return dt != nil && len(dt.secretKey) > 0
}

func (dt *DownloadToken) Sign(artifactID string) (string, error) {
	if !dt.Enabled() {
		return "", errors.New("download token secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		artifactClaim: artifactID,
		"exp":         now.Add(dt.ttl).Unix(),
		"iat":         now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(dt.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token and that it was issued for artifactID.
func (dt *DownloadToken) Verify(tokenString, artifactID string) error {
	if !dt.Enabled() {
		return errors.New("download token secret is empty")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return dt.secretKey, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}
	id, _ := claims[artifactClaim].(string)
	if id != artifactID {
		return errors.New("token was issued for a different artifact")
	}
	return nil
}
