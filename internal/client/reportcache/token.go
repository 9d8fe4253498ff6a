package reportcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// AnonymousSubject is the token subject that marks a signed-out user.
const AnonymousSubject = "anonymous"

// FileTokenProvider reads the access token another process writes to
// path. The token is not verified here; the API verifies it on every call.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a provider reading path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Current returns domain.ErrIdentityPending while the file is missing or empty.
func (p *FileTokenProvider) Current(_ context.Context) (Identity, error) {
	raw, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Identity{}, domain.ErrIdentityPending
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return Identity{}, domain.ErrIdentityPending
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}

	if claims.Subject == AnonymousSubject {
		return Identity{Anonymous: true, Source: SourceProvider}, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("token subject %q: %w", claims.Subject, err)
	}

	return Identity{UserID: userID, Token: token, Source: SourceProvider}, nil
}
