package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// localUser is the part of the stored player user holding the token.
type localUser struct {
	// ID is the Qobuz user id.
	ID int64 `json:"id"`
	// Token is the user auth token sent as X-User-Auth-Token.
	Token string `json:"token"`
	// Login is the account login name.
	Login string `json:"login"`
}

// readLocalUser returns the raw "localuser" local storage entry, or an empty string.
func (s *ServiceImpl) readLocalUser(ctx context.Context) string {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "readLocalUser panic recovered: %v", r)
		}
	}()

	result, err := s.page.Eval(`(key) => window.localStorage.getItem(key) || ""`, localUserStorageKey)
	if err != nil {
		return ""
	}

	return result.Value.Str()
}

// parseLocalUser extracts the user auth token from the stored player user.
func parseLocalUser(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrTokenNotFound
	}

	var user localUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", localUserStorageKey, err)
	}

	if strings.TrimSpace(user.Token) == "" {
		return "", ErrTokenNotFound
	}

	return user.Token, nil
}
