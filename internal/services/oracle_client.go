package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
	"shipment-dispatch-service/internal/prompts"
)

// OracleClient binds the role instructions to a transport.
type OracleClient struct {
	transport ports.OracleTransport
	roles     *prompts.RoleBook
}

func NewOracleClient(transport ports.OracleTransport, roles *prompts.RoleBook) (*OracleClient, error) {
	if transport == nil {
		return nil, errors.New("oracle client: transport must be non-nil")
	}
	if roles == nil {
		return nil, errors.New("oracle client: roles must be non-nil")
	}
	return &OracleClient{transport: transport, roles: roles}, nil
}

// Invoke serializes payload, sends it under role's instructions and returns
// the raw reply. Transport failures wrap domain.ErrOracleUnavailable.
func (c *OracleClient) Invoke(ctx context.Context, role prompts.Role, payload any) (_ string, err error) {
	defer obs.Time(ctx, "oracle."+string(role))(&err)

	instructions, err := c.roles.Instructions(role)
	if err != nil {
		return "", fmt.Errorf("invoke oracle: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("invoke %s: marshal payload: %w", role, err)
	}

	text, err := c.transport.Send(ctx, ports.OracleRequest{
		Role:         string(role),
		Instructions: instructions,
		Payload:      string(body),
	})
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w: %w", role, domain.ErrOracleUnavailable, err)
	}

	return text, nil
}
