package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// AssistantClaims is the short-lived token presented to the hosted chat
// service. It is minted from a shared secret carried in configuration; that
// exposure is inherited from the original design.
type AssistantClaims struct {
	CustomerID string `json:"customerId"`
	StoreKey   string `json:"storeKey"`
	jwt.RegisteredClaims
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Reply string `json:"reply"`
}

type AssistantService struct {
	baseURL  string
	secret   []byte
	tokenTTL time.Duration
	http     *resty.Client
	logger   *zap.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(cfg config.AssistantConfig, logger *zap.Logger) *AssistantService {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	return &AssistantService{
		baseURL:  cfg.BaseURL,
		secret:   []byte(cfg.Secret),
		tokenTTL: cfg.TokenTTL,
		http:     client,
		logger:   logger,
	}
}

// Enabled reports whether a chat service is configured.
func (s *AssistantService) Enabled() bool {
	return s.baseURL != ""
}

// MintToken signs a one-hour token identifying the seller and store.
func (s *AssistantService) MintToken(customerID, storeKey string) (string, error) {
	now := time.Now()
	claims := AssistantClaims{
		CustomerID: customerID,
		StoreKey:   storeKey,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Chat relays a message to the hosted chat service on the seller's behalf.
func (s *AssistantService) Chat(ctx context.Context, customerID, storeKey, message string) (*ChatReply, error) {
	if !s.Enabled() {
		return nil, &errors.ErrValidation{Message: "assistant is not configured"}
	}
	if message == "" {
		return nil, &errors.ErrValidation{Message: "message is required"}
	}

	token, err := s.MintToken(customerID, storeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to mint assistant token: %w", err)
	}

	var reply ChatReply
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]string{
			"message":  message,
			"storeKey": storeKey,
		}).
		SetResult(&reply).
		Post(s.baseURL + "/chat")
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "assistant chat", Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &errors.ErrRemote{
			Operation: "assistant chat",
			Err:       fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	return &reply, nil
}
