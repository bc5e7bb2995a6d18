package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/dkimathi/safiri/agent/contract"
	profilex "github.com/dkimathi/safiri/agent/profile"
)

// SaveProfile overwrites the stored record. Store errors are fatal for the
// request and propagate past the orchestrator boundary.
func SaveProfile(
	ctx context.Context,
	in *GraphState,
	store profilex.Store,
) (*GraphState, error) {
	if in == nil || in.Profile == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	in.Profile.Touch(in.Now)
	if err := store.Save(ctx, in.Profile); err != nil {
		return nil, err
	}
	return in, nil
}
