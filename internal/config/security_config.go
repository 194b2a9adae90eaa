package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Bearer access token required
)

// EndpointSecurityConfig maps "METHOD /route/template" to its required
// security level.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operations - Public
	"GET /healthz": SecurityPublic,
	"GET /metrics": SecurityPublic,

	// Rental requests - Access Protected
	"POST /solicitacoes":                         SecurityAccess,
	"GET /solicitacoes/minhas":                   SecurityAccess,
	"GET /solicitacoes/recebidas":                SecurityAccess,
	"PUT /solicitacoes/{id}/aprovar":             SecurityAccess,
	"PUT /solicitacoes/{id}/recusar":             SecurityAccess,
	"PATCH /solicitacoes/{id}/mark-read/{party}": SecurityAccess,

	// Contracts - Access Protected
	"GET /contratos/minhas":                   SecurityAccess,
	"GET /contratos/recebidos":                SecurityAccess,
	"GET /contratos/{id}":                     SecurityAccess,
	"GET /contratos/{id}/documento":           SecurityAccess,
	"GET /contratos/{id}/revisoes":            SecurityAccess,
	"PUT /contratos/{id}":                     SecurityAccess,
	"POST /contratos/{id}/publicar":           SecurityAccess,
	"POST /contratos/{id}/assinar":            SecurityAccess,
	"PATCH /contratos/{id}/mark-read/{party}": SecurityAccess,

	// Notifications - Access Protected
	"GET /notificacoes/contador": SecurityAccess,
}

// GetSecurityLevel returns the security level for a method and route template
func GetSecurityLevel(method, route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
