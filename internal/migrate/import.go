package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qpath/qpath/internal/store"
)

// Import stores a legacy value exported from the browser client under the
// user's namespaced key, where the next view load will migrate it.
func Import(ctx context.Context, storage store.KeyValueRepo, kind Kind, userID, raw string) (string, error) {
	keys := CandidateKeys(kind, userID)
	if len(keys) == 0 {
		return "", fmt.Errorf("unknown legacy kind %q", kind)
	}
	if !json.Valid([]byte(raw)) {
		return "", errors.New("legacy value is not valid JSON")
	}

	key := keys[0]
	if err := storage.Set(ctx, key, raw); err != nil {
		return "", fmt.Errorf("store legacy %s: %w", kind, err)
	}
	return key, nil
}

// Pending lists the legacy keys currently present for userID.
func Pending(ctx context.Context, storage store.KeyValueRepo, userID string) ([]string, error) {
	var present []string
	for _, kind := range Kinds {
		for _, key := range CandidateKeys(kind, userID) {
			_, ok, err := storage.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", key, err)
			}
			if ok {
				present = append(present, key)
			}
		}
	}
	return present, nil
}
