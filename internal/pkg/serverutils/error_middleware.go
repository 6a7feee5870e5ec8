package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
)

// LangLocal is the fiber locals key under which handlers record the session
// language so the error middleware can localize its envelope.
const LangLocal = "lang"

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// uniform envelope. The taxonomy kind picks the status code and a localized
// template; raw error text is logged upstream, never returned.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		lang := i18n.English
		if v, ok := ctx.Locals(LangLocal).(i18n.Language); ok && v != "" {
			lang = v
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		kind := apperror.KindOf(err)
		status := statusFor(kind)
		resp := ErrorResponse(status, i18n.Render(lang, templateFor(kind)))
		resp.Kind = string(kind)
		return ctx.Status(status).JSON(resp)
	}
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindExpired:
		return fiber.StatusGone
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindAmbiguous:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusServiceUnavailable
	}
}

func templateFor(kind apperror.Kind) i18n.Key {
	switch kind {
	case apperror.KindValidation:
		return i18n.MsgErrInvalid
	case apperror.KindNotFound:
		return i18n.MsgErrNotFound
	case apperror.KindExpired:
		return i18n.MsgErrExpired
	case apperror.KindConflict:
		return i18n.MsgErrConflict
	case apperror.KindAmbiguous:
		return i18n.MsgClarify
	default:
		return i18n.MsgErrTransient
	}
}
