package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/dkimathi/safiri/agent/contract"
	profilex "github.com/dkimathi/safiri/agent/profile"
)

// LoadOrCreateProfile loads the user's profile, creating a defaulted record
// lazily on first contact. Any store error other than not-found is fatal
// for the request and propagates.
func LoadOrCreateProfile(
	ctx context.Context,
	in *GraphState,
	store profilex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	p, err := loadOrCreateProfile(ctx, store, in.UserID, in.Now)
	if err != nil {
		return nil, err
	}
	in.Profile = p
	return in, nil
}

func loadOrCreateProfile(
	ctx context.Context,
	store profilex.Store,
	userID string,
	now time.Time,
) (*profilex.UserProfile, error) {
	p, err := store.Load(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profilex.ErrProfileNotFound) {
		return nil, err
	}

	return profilex.NewUserProfile(userID, now), nil
}
