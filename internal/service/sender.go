package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/provider"
)

// Sender funnels every outbound message through the circuit breaker and
// caches the provider message id for webhook correlation. It is shared by
// the dispatch pipeline and ad-hoc sends.
type Sender struct {
	provider       provider.Client
	circuitBreaker *CircuitBreaker
	redisClient    *redis.Client
	logger         *zap.Logger
}

func NewSender(providerClient provider.Client, cb *CircuitBreaker, redisClient *redis.Client, logger *zap.Logger) *Sender {
	return &Sender{
		provider:       providerClient,
		circuitBreaker: cb,
		redisClient:    redisClient,
		logger:         logger,
	}
}

// send performs exactly one outbound call for one recipient. All failures
// collapse into a single error carrying a human-readable detail.
func (s *Sender) send(ctx context.Context, instanceID, phone string, messageType models.MessageType, text, mediaURL string) (string, error) {
	number := provider.NormalizePhone(phone)

	var result *provider.SendResult
	err := s.circuitBreaker.Execute(ctx, func() error {
		var sendErr error
		switch messageType {
		case models.MessageTypeText:
			result, sendErr = s.provider.SendText(ctx, instanceID, number, text)
		default:
			caption := text
			if messageType == models.MessageTypeAudio {
				// Audio sends carry no caption per provider convention.
				caption = ""
			}
			result, sendErr = s.provider.SendMedia(ctx, instanceID, provider.MediaMessage{
				Number:    number,
				MediaType: string(messageType),
				MediaURL:  mediaURL,
				Caption:   caption,
			})
		}
		return sendErr
	})
	if err != nil {
		return "", err
	}

	if result.MessageID != "" {
		s.cacheMessageID(result.MessageID)
	}

	return result.MessageID, nil
}

// cacheMessageID stores the provider message id with a 24h TTL. Best effort:
// a Redis outage never fails a send.
func (s *Sender) cacheMessageID(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := fmt.Sprintf("message:%s", messageID)
	cacheValue := time.Now().Format(time.RFC3339)

	if err := s.redisClient.Set(ctx, cacheKey, cacheValue, 24*time.Hour).Err(); err != nil {
		s.logger.Warn("Failed to cache provider message id",
			zap.String("providerMessageID", messageID),
			zap.Error(err))
	}
}
