package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/modules/user"
)

// Module names permissions are granted on. The names match the permission
// keys the web frontend has always used.
const (
	ModuleInventario   = "inventario"
	ModuleItems        = "items"
	ModuleRfid         = "rfid"
	ModuleGrupos       = "grupos"
	ModuleClientes     = "clientes"
	ModuleProyectos    = "proyectos"
	ModuleProveedores  = "proveedores"
	ModuleTareas       = "tareas"
	ModuleCotizaciones = "cotizaciones"
	ModuleCatalogo     = "catalogo"
	ModuleUsuarios     = "usuarios"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID uuid.UUID
	Role   user.Role
}

// Service defines authentication and the permission collaborator the rest
// of the system consults.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (*Principal, error)
	CanView(p *Principal, module string) bool
	CanEdit(p *Principal, module string) bool
}
