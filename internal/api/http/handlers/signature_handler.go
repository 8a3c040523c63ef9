package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/api/dto"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/service"
	apperrors "github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/pkg/util"
)

// SignatureHandler exposes the Meeting SDK signing endpoint.
type SignatureHandler struct {
	signatures *service.SignatureService
}

// NewSignatureHandler constructs handler.
func NewSignatureHandler(signatureService *service.SignatureService) *SignatureHandler {
	return &SignatureHandler{signatures: signatureService}
}

// Create handles POST /sign and its legacy alias POST /.
func (h *SignatureHandler) Create(c *fiber.Ctx) error {
	var req dto.SignatureRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", map[string]any{"body": err.Error()})
	}

	resp, err := h.signatures.Sign(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
