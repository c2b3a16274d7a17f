package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/logging"
	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/mykafka"
)

const (
	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelInApp = "in_app"

	TypeOrderCreated      = "order_created"
	TypeOrderUpdated      = "order_updated"
	TypePaymentSuccess    = "payment_success"
	TypePaymentFailed     = "payment_failed"
	TypeProductReview     = "product_review"
	TypeSellerApplication = "seller_application"
)

// Service fans a notification out to the requested channels: a row per
// channel plus a kafka event for downstream delivery workers. Failures are
// logged and swallowed; notifying never fails the calling request.
type Service struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func NewService(db *gorm.DB, producer *mykafka.Producer) *Service {
	return &Service{DB: db, Producer: producer}
}

func (s *Service) Send(ctx context.Context, userID uint, ntype, title, message string, data map[string]interface{}, channels []string) {
	l := logging.FromContext(ctx)

	if len(channels) == 0 {
		channels = []string{ChannelInApp, ChannelEmail}
	}

	encoded := ""
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			encoded = string(raw)
		}
	}

	for _, channel := range channels {
		n := models.Notification{
			UserID:  userID,
			Type:    ntype,
			Channel: channel,
			Title:   title,
			Message: message,
			Data:    encoded,
		}
		if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
			l.Error("failed to store notification", "channel", channel, "error", err)
			continue
		}

		event := map[string]interface{}{
			"type":            ntype,
			"notification_id": n.ID,
			"user_id":         userID,
			"channel":         channel,
			"title":           title,
			"message":         message,
		}

		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := s.Producer.PublishEvent(pubCtx, "notification_events", fmt.Sprint(userID), event); err != nil {
			l.Error("kafka publish error", "error", err)
		}
		cancel()
	}
}
