package worker

import (
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/service"
)

// StartAuditWorker registers audit handlers for pipeline events.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
