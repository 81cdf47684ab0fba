package middleware

import (
	"context"
	"net/http"

	apperror "fuwari/internal/errors"
)

// MaintenanceChecker é o contrato mínimo que o gate de manutenção precisa da
// camada de configurações do site.
type MaintenanceChecker interface {
	IsMaintenanceMode(ctx context.Context) bool
}

// NewMaintenanceMiddleware bloqueia rotas públicas com 503 enquanto o site está
// em modo manutenção. A leitura passa pelo cache de TTL curto do serviço de
// configurações, então o custo por requisição é um GET no Redis na maioria das
// vezes. Rotas administrativas e o health check não passam por este gate.
func NewMaintenanceMiddleware(checker MaintenanceChecker) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if checker.IsMaintenanceMode(r.Context()) {
				writeError(w, apperror.NewUnavailableError("A loja está temporariamente fechada para manutenção."))
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
