package middleware

import (
	"errors"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/i18n"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request after the handler chain completes.
func RequestLogger(log logger.ZapLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperror.StatusCode(err)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}

		switch {
		case status >= 500:
			log.Error("request failed", append(fields, zap.Error(err))...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}

// ErrorHandler turns handler errors into the JSON envelope the clients expect.
// Server-side failures never leak their cause; the message is localized instead.
func ErrorHandler(log logger.ZapLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		lang := c.Get(fiber.HeaderAcceptLanguage)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg := fe.Message
			if fe.Code >= fiber.StatusInternalServerError {
				msg = i18n.T("error.server", lang)
			}
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": msg})
		}

		status := apperror.StatusCode(err)
		msg := err.Error()
		var ae *apperror.Error
		if errors.As(err, &ae) {
			msg = ae.Message
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			msg = i18n.T(apperror.MessageID(err), lang)
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	}
}
