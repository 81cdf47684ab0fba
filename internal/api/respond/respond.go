package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// ServiceResponse processa o retorno de um Serviço e envia a resposta HTTP
// padronizada: JSON com o status de sucesso informado, ou o mapeamento do
// erro tipado (AppError) para código/categoria/mensagem.
func ServiceResponse(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		log.Debug("Requisição concluída com sucesso.", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				log.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		// A mensagem do AppError não carrega o erro subjacente (driver, rede);
		// para o log, recompomos a cadeia completa via Unwrap.
		logErr := err
		if cause := errors.Unwrap(err); cause != nil {
			logErr = fmt.Errorf("%s: %w", err.Error(), cause)
		}
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), logErr)
	} else {
		// Erros de cliente (4xx) são registrados em nível debug.
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category),
			map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
