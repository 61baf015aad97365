package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores del motor de licenciamiento de módulos.
var (
	ErrNotAuthenticated      = errors.New("usuario no autenticado")
	ErrOrganizationNotFound  = errors.New("organización no encontrada")
	ErrModuleLicenseNotFound = errors.New("licencia de módulo no encontrada")
	ErrModuleNotLicensed     = errors.New("módulo no licenciado")
	ErrLicenseExpired        = errors.New("licencia de módulo vencida")
	ErrUserLimitExceeded     = errors.New("límite de usuarios concurrentes alcanzado")
	ErrDependencyNotMet      = errors.New("dependencia de módulo no activa")
	ErrCoreModuleProtected   = errors.New("los módulos core no se pueden desactivar")
	ErrUnknownModule         = errors.New("código de módulo desconocido")
)

// LicenseError detalla un rechazo del motor de licencias. Envuelve uno de los
// errores Err* de arriba para que la capa HTTP pueda usar errors.Is.
type LicenseError struct {
	Kind       error
	Module     string
	Dependency string // solo para ErrDependencyNotMet
	MaxUsers   int    // solo para ErrUserLimitExceeded
	Current    int
}

func (e *LicenseError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrDependencyNotMet):
		return fmt.Sprintf("el módulo %s requiere que %s esté activo", e.Module, e.Dependency)
	case errors.Is(e.Kind, ErrUserLimitExceeded):
		return fmt.Sprintf("%s: %s (%d/%d)", e.Kind, e.Module, e.Current, e.MaxUsers)
	case e.Module != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Module)
	default:
		return e.Kind.Error()
	}
}

func (e *LicenseError) Unwrap() error { return e.Kind }

// NewLicenseError construye un LicenseError para el módulo indicado.
func NewLicenseError(kind error, module string) *LicenseError {
	return &LicenseError{Kind: kind, Module: module}
}
