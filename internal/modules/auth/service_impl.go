package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/modules/user"
)

type service struct {
	userRepo user.Repository
	jwtKey   []byte
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, jwtSecret string) Service {
	return &service{userRepo: userRepo, jwtKey: []byte(jwtSecret)}
}

type claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return "", apperror.Permission("invalid credentials")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", apperror.Permission("invalid credentials")
	}

	expirationTime := time.Now().Add(24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Role: string(u.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			ExpiresAt: expirationTime.Unix(),
		},
	})

	return token.SignedString(s.jwtKey)
}

func (s *service) ParseToken(tokenString string) (*Principal, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Permission("invalid or expired token")
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, apperror.Permission("invalid token subject")
	}

	return &Principal{UserID: userID, Role: user.Role(c.Role)}, nil
}

// editable lists, per role, the modules that may be edited. View access is
// broader: every role can view every module except usuarios, which only
// admins and managers see.
var editable = map[user.Role]map[string]bool{
	user.RoleAdmin: {
		ModuleInventario: true, ModuleItems: true, ModuleRfid: true,
		ModuleGrupos: true, ModuleClientes: true, ModuleProyectos: true,
		ModuleProveedores: true, ModuleTareas: true, ModuleCotizaciones: true,
		ModuleCatalogo: true, ModuleUsuarios: true,
	},
	user.RoleManager: {
		ModuleInventario: true, ModuleItems: true, ModuleRfid: true,
		ModuleGrupos: true, ModuleClientes: true, ModuleProyectos: true,
		ModuleProveedores: true, ModuleTareas: true, ModuleCotizaciones: true,
		ModuleCatalogo: true,
	},
	user.RoleOperator: {
		ModuleInventario: true, ModuleItems: true, ModuleRfid: true,
		ModuleGrupos: true, ModuleTareas: true,
	},
	user.RoleViewer: {},
}

func (s *service) CanEdit(p *Principal, module string) bool {
	if p == nil {
		return false
	}
	return editable[p.Role][module]
}

func (s *service) CanView(p *Principal, module string) bool {
	if p == nil {
		return false
	}
	if module == ModuleUsuarios {
		return p.Role == user.RoleAdmin || p.Role == user.RoleManager
	}
	_, known := editable[p.Role]
	return known
}
