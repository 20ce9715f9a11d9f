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

type BusinessUnitService struct {
	client *ctp.Client
	logger *zap.Logger
}

// NewBusinessUnitService creates a new business unit service
func NewBusinessUnitService(client *ctp.Client, logger *zap.Logger) *BusinessUnitService {
	return &BusinessUnitService{client: client, logger: logger}
}

// ListForCustomer fetches the business units the customer is an associate of.
func (s *BusinessUnitService) ListForCustomer(ctx context.Context, customerID string) ([]domain.BusinessUnit, error) {
	where := fmt.Sprintf(`associates(customer(id=%q))`, customerID)
	resp, err := s.client.Execute(ctx, ctp.BusinessUnitsQuery, map[string]interface{}{
		"where": where,
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "businessUnits", Err: err}
	}

	var result struct {
		BusinessUnits struct {
			Total   int64 `json:"total"`
			Results []struct {
				ID        string           `json:"id"`
				Version   int64            `json:"version"`
				Key       string           `json:"key"`
				Name      string           `json:"name"`
				Stores    []domain.StoreRef `json:"stores"`
				Addresses []domain.Address  `json:"addresses"`
				Custom    *struct {
					CustomFieldsRaw []struct {
						Name  string          `json:"name"`
						Value json.RawMessage `json:"value"`
					} `json:"customFieldsRaw"`
				} `json:"custom"`
			} `json:"results"`
		} `json:"businessUnits"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode business units: %w", err)
	}

	units := make([]domain.BusinessUnit, 0, len(result.BusinessUnits.Results))
	for _, r := range result.BusinessUnits.Results {
		unit := domain.BusinessUnit{
			ID:        r.ID,
			Version:   r.Version,
			Key:       r.Key,
			Name:      r.Name,
			Stores:    r.Stores,
			Addresses: r.Addresses,
		}
		if r.Custom != nil {
			for _, field := range r.Custom.CustomFieldsRaw {
				var value any
				_ = json.Unmarshal(field.Value, &value)
				unit.CustomFields = append(unit.CustomFields, domain.CustomField{Name: field.Name, Value: value})
			}
		}
		units = append(units, unit)
	}
	return units, nil
}

// Select picks the active business unit: the remembered one if it is still in
// the list, otherwise the first.
func (s *BusinessUnitService) Select(units []domain.BusinessUnit, rememberedID string) (*domain.BusinessUnit, error) {
	if len(units) == 0 {
		return nil, &errors.ErrNotFound{Resource: "business unit", ID: "for customer"}
	}
	if rememberedID != "" {
		for i := range units {
			if units[i].ID == rememberedID {
				return &units[i], nil
			}
		}
	}
	return &units[0], nil
}

// StoreFor resolves the unit's store key. Nearly every downstream query is
// filtered by it.
func (s *BusinessUnitService) StoreFor(unit *domain.BusinessUnit) (domain.StoreRef, error) {
	if unit == nil || len(unit.Stores) == 0 {
		return domain.StoreRef{}, &errors.ErrNotFound{Resource: "store", ID: "on business unit"}
	}
	return unit.Stores[0], nil
}

// SetCustomField writes one custom field on the unit, version-guarded.
func (s *BusinessUnitService) SetCustomField(ctx context.Context, id string, version int64, name string, value interface{}) (int64, error) {
	actions := []map[string]interface{}{
		{"setCustomField": ctp.SetCustomFieldAction{Name: name, Value: value}},
	}
	resp, err := s.client.Execute(ctx, ctp.UpdateBusinessUnitMutation, map[string]interface{}{
		"id":      id,
		"version": version,
		"actions": actions,
	})
	if err != nil {
		return 0, remoteOrConflict("updateBusinessUnit", "business unit", id, version, err)
	}

	var result struct {
		UpdateBusinessUnit struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
		} `json:"updateBusinessUnit"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, fmt.Errorf("failed to decode business unit update: %w", err)
	}
	return result.UpdateBusinessUnit.Version, nil
}
