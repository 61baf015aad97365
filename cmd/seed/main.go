// seed crea la organización de plataforma y su primer superadmin.
//
// Uso: go run ./cmd/seed <email> <password> [nombre-organización]
// Usa la misma configuración que cmd/api (DATABASE_URL o DB_*). Aplica las
// migraciones embebidas antes de insertar.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/cmms-api/internal/application/auth"
	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/usecase"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cmms-api/pkg/config"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "uso: seed <email> <password> [nombre-organización]")
		os.Exit(2)
	}
	email, password := os.Args[1], os.Args[2]
	orgName := "Plataforma"
	if len(os.Args) > 3 {
		orgName = os.Args[3]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
		fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
		os.Exit(1)
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	orgRepo := postgres.NewOrganizationRepository(pool)
	org, err := usecase.NewOrganizationUseCase(orgRepo).Create(ctx, dto.CreateOrganizationRequest{Name: orgName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear organización: %v\n", err)
		os.Exit(1)
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), orgRepo, auth.JWTConfig{})
	user, err := authUC.CreateSuperAdmin(ctx, dto.RegisterRequest{
		Email:          email,
		Password:       password,
		OrganizationID: org.ID,
		Name:           "Superadmin",
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			fmt.Fprintf(os.Stderr, "El email %s ya está registrado\n", email)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Crear superadmin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Organización %s (%s)\nSuperadmin %s (%s)\n", org.Name, org.ID, user.Email, user.ID)
}
