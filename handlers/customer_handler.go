package handlers

import (
	"net/http"

	"github.com/upb/warehouse-api/middleware"
	"github.com/upb/warehouse-api/services"
	"github.com/upb/warehouse-api/utils"
	"go.uber.org/zap"
)

// CustomerHandler serves data about the authenticated customer
type CustomerHandler struct {
	logger *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{logger: logger}
}

// HandleMe handles GET /api/v1/customers/me
func (h *CustomerHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	customer := middleware.GetCustomerFromContext(r.Context())
	if customer == nil {
		HandleServiceError(w, services.ErrUnauthenticated, h.logger)
		return
	}

	if err := utils.WriteOK(w, newCustomerResponse(customer)); err != nil {
		h.logger.Error("failed to write customer response",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
	}
}
