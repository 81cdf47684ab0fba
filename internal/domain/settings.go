package domain

import "time"

// Setting é um par chave/valor de configuração do site, persistido em uma
// tabela key-value e lido em toda requisição (via cache de TTL curto).
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Chaves de configuração conhecidas pelo sistema.
const (
	SettingMaintenanceMode = "maintenance_mode"
	SettingBannerEnabled   = "banner_enabled"
	SettingBannerMessage   = "banner_message"
)

// Banner é o recorte público do banner de anúncio da vitrine.
type Banner struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}
