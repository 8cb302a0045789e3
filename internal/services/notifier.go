package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/sendgrid"
)

// AlertNotifier is told about alerts seen for the first time.
type AlertNotifier interface {
	AlertsDetected(ctx context.Context, asset *domain.IPAsset, alerts []*domain.InfringementAlert)
}

type emailAlertNotifier struct {
	log        *logger.Logger
	mail       sendgrid.Client
	recipients []sendgrid.EmailAddress
}

// NewEmailAlertNotifier returns nil when mail is not configured or there is
// nobody to tell; MonitoringService treats a nil notifier as disabled.
func NewEmailAlertNotifier(log *logger.Logger, mail sendgrid.Client, recipients []string) AlertNotifier {
	if mail == nil {
		return nil
	}
	var to []sendgrid.EmailAddress
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, sendgrid.EmailAddress{Email: r})
		}
	}
	if len(to) == 0 {
		return nil
	}
	return &emailAlertNotifier{
		log:        log.With("service", "AlertNotifier"),
		mail:       mail,
		recipients: to,
	}
}

func (n *emailAlertNotifier) AlertsDetected(ctx context.Context, asset *domain.IPAsset, alerts []*domain.InfringementAlert) {
	if n == nil || asset == nil || len(alerts) == 0 {
		return
	}
	req := alertEmail(asset, alerts)
	req.To = n.recipients
	if _, err := n.mail.Send(ctx, req); err != nil {
		// Delivery is best effort; the alerts are already stored.
		n.log.Warn("Alert email failed", "asset_id", asset.AssetID, "count", len(alerts), "error", err)
		return
	}
	n.log.Info("Alert email sent", "asset_id", asset.AssetID, "count", len(alerts))
}

func alertEmail(asset *domain.IPAsset, alerts []*domain.InfringementAlert) sendgrid.SendEmailRequest {
	name := asset.Title
	if name == "" {
		name = asset.AssetID
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d new potential infringement(s) for %s (%s):\n\n", len(alerts), name, asset.AssetID)
	for _, a := range alerts {
		platform := a.Platform
		if platform == "" {
			platform = "unknown"
		}
		fmt.Fprintf(&b, "- %s [%s] confidence %.2f\n", a.SourceURL, platform, a.Confidence)
	}
	return sendgrid.SendEmailRequest{
		Subject:    fmt.Sprintf("New infringement alerts for %s", name),
		Text:       b.String(),
		Categories: []string{"infringement_alert"},
		CustomArgs: map[string]string{"asset_id": asset.AssetID},
	}
}
