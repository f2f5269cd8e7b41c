package usecase

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Desired returns the alerts that should be open for a product right now.
// Out-of-stock supersedes low-stock, expired supersedes expiring-soon.
func Desired(s *dto.Subject, now time.Time, warnDays int) []model.Alert {
	if !s.IsActive {
		return nil
	}
	var out []model.Alert
	add := func(alertType, severity, msg string) {
		out = append(out, model.Alert{
			OrganizationID: s.OrganizationID,
			ProductID:      s.ProductID,
			ProductName:    s.ProductName,
			AlertType:      alertType,
			Severity:       severity,
			Message:        msg,
		})
	}

	switch {
	case s.TotalStock <= 0:
		add(model.AlertOutOfStock, model.SeverityCritical, fmt.Sprintf("%s is out of stock", s.ProductName))
	case s.TotalStock <= s.LowStockThreshold:
		add(model.AlertLowStock, model.SeverityWarning,
			fmt.Sprintf("%s is low on stock (%d left, threshold %d)", s.ProductName, s.TotalStock, s.LowStockThreshold))
	}

	if s.ExpirationDate != nil {
		exp := *s.ExpirationDate
		switch {
		case !now.Before(exp):
			add(model.AlertExpired, model.SeverityCritical,
				fmt.Sprintf("%s expired on %s", s.ProductName, exp.Format("2006-01-02")))
		case exp.Sub(now) <= time.Duration(warnDays)*24*time.Hour:
			add(model.AlertExpiringSoon, model.SeverityWarning,
				fmt.Sprintf("%s expires on %s", s.ProductName, exp.Format("2006-01-02")))
		}
	}
	return out
}
