package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// StoreKeyCustomField is the customer custom field that entitles a customer
// to the console and names their store.
const StoreKeyCustomField = "store-key"

// SessionClaims is the signed console session token payload.
type SessionClaims struct {
	CustomerID     string `json:"customerId"`
	Email          string `json:"email"`
	StoreKey       string `json:"storeKey"`
	BusinessUnitID string `json:"businessUnitId,omitempty"`
	jwt.RegisteredClaims
}

type SessionService struct {
	client *ctp.Client
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(client *ctp.Client, cfg config.SessionConfig, logger *zap.Logger) *SessionService {
	return &SessionService{
		client: client,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		logger: logger,
	}
}

// Login checks the seller's credentials against the platform and reads the
// store-key custom field off the returned customer. A customer without that
// field is denied access and no session is issued.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, string, error) {
	resp, err := s.client.Execute(ctx, ctp.CustomerSignInMutation, map[string]interface{}{
		"email":    email,
		"password": password,
	})
	if err != nil {
		if isInvalidCredentials(resp) {
			return nil, "", &errors.ErrUnauthorized{Message: "invalid email or password"}
		}
		return nil, "", &errors.ErrRemote{Operation: "customerSignIn", Err: err}
	}

	var result struct {
		CustomerSignIn struct {
			Customer struct {
				ID        string `json:"id"`
				Version   int64  `json:"version"`
				Email     string `json:"email"`
				FirstName string `json:"firstName"`
				LastName  string `json:"lastName"`
				Custom    *struct {
					CustomFieldsRaw []struct {
						Name  string          `json:"name"`
						Value json.RawMessage `json:"value"`
					} `json:"customFieldsRaw"`
				} `json:"custom"`
			} `json:"customer"`
		} `json:"customerSignIn"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, "", fmt.Errorf("failed to decode sign-in response: %w", err)
	}

	customer := result.CustomerSignIn.Customer
	storeKey := ""
	if customer.Custom != nil {
		for _, field := range customer.Custom.CustomFieldsRaw {
			if field.Name == StoreKeyCustomField {
				_ = json.Unmarshal(field.Value, &storeKey)
			}
		}
	}
	if storeKey == "" {
		s.logger.Warn("Sign-in without store-key custom field denied",
			zap.String("customer_id", customer.ID),
		)
		return nil, "", &errors.ErrAccessDenied{Message: "customer has no store-key assigned"}
	}

	session := &domain.Session{
		SchemaVersion: domain.SessionSchemaVersion,
		IsLoggedIn:    true,
		CustomerID:    customer.ID,
		Email:         customer.Email,
		FirstName:     customer.FirstName,
		LastName:      customer.LastName,
		StoreKey:      storeKey,
	}

	token, err := s.IssueToken(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info("Seller signed in",
		zap.String("customer_id", customer.ID),
		zap.String("store_key", storeKey),
	)
	return session, token, nil
}

// Logout returns the cleared session payload. The token itself is discarded
// by the client; there is no server-side session record to invalidate.
func (s *SessionService) Logout() *domain.Session {
	return &domain.Session{
		SchemaVersion: domain.SessionSchemaVersion,
		IsLoggedIn:    false,
	}
}

// IssueToken signs a session token for an authenticated seller.
func (s *SessionService) IssueToken(session *domain.Session) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		CustomerID:     session.CustomerID,
		Email:          session.Email,
		StoreKey:       session.StoreKey,
		BusinessUnitID: session.SelectedBusinessUnitID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates a session token and returns its claims.
func (s *SessionService) ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, &errors.ErrUnauthorized{Message: "invalid session token"}
	}
	return claims, nil
}

func isInvalidCredentials(resp *ctp.GraphQLResponse) bool {
	if resp == nil {
		return false
	}
	for _, gqlErr := range resp.Errors {
		if gqlErr.Code() == "InvalidCredentials" {
			return true
		}
		if strings.Contains(strings.ToLower(gqlErr.Message), "credentials") {
			return true
		}
	}
	return false
}
