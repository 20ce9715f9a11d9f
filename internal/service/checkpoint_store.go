package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// RemoteCheckpointStore keeps price-workflow checkpoints in platform custom
// objects so they survive a process restart without this service owning any
// storage of its own.
type RemoteCheckpointStore struct {
	client *ctp.Client
	logger *zap.Logger
}

// NewRemoteCheckpointStore creates a checkpoint store backed by the
// price-workflows custom-object container.
func NewRemoteCheckpointStore(client *ctp.Client, logger *zap.Logger) *RemoteCheckpointStore {
	return &RemoteCheckpointStore{client: client, logger: logger}
}

func (r *RemoteCheckpointStore) Save(ctx context.Context, wf *domain.PriceWorkflow) error {
	_, err := r.client.Execute(ctx, ctp.UpsertCustomObjectMutation, map[string]interface{}{
		"draft": ctp.CustomObjectDraft{
			Container: CheckpointContainer,
			Key:       wf.ID,
			Value:     wf,
		},
	})
	if err != nil {
		return &errors.ErrRemote{Operation: "upsertCustomObject", Err: err}
	}
	return nil
}

func (r *RemoteCheckpointStore) Get(ctx context.Context, id string) (*domain.PriceWorkflow, error) {
	resp, err := r.client.Execute(ctx, ctp.CustomObjectQuery, map[string]interface{}{
		"container": CheckpointContainer,
		"key":       id,
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "customObject", Err: err}
	}

	var result struct {
		CustomObject *struct {
			Value domain.PriceWorkflow `json:"value"`
		} `json:"customObject"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if result.CustomObject == nil {
		return nil, &errors.ErrNotFound{Resource: "price workflow", ID: id}
	}
	return &result.CustomObject.Value, nil
}

func (r *RemoteCheckpointStore) Delete(ctx context.Context, id string) error {
	_, err := r.client.Execute(ctx, ctp.DeleteCustomObjectMutation, map[string]interface{}{
		"container": CheckpointContainer,
		"key":       id,
	})
	if err != nil {
		return &errors.ErrRemote{Operation: "deleteCustomObject", Err: err}
	}
	return nil
}

func (r *RemoteCheckpointStore) List(ctx context.Context) ([]domain.PriceWorkflow, error) {
	resp, err := r.client.Execute(ctx, ctp.CustomObjectsQuery, map[string]interface{}{
		"container": CheckpointContainer,
		"limit":     100,
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "customObjects", Err: err}
	}

	var result struct {
		CustomObjects struct {
			Results []struct {
				Value domain.PriceWorkflow `json:"value"`
			} `json:"results"`
		} `json:"customObjects"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoints: %w", err)
	}

	out := make([]domain.PriceWorkflow, 0, len(result.CustomObjects.Results))
	for _, r := range result.CustomObjects.Results {
		out = append(out, r.Value)
	}
	return out, nil
}
