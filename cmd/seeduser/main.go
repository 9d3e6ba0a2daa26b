// cmd/seeduser/main.go: Crea/actualiza un usuario (por defecto el admin inicial).
// Uso: go run ./cmd/seeduser -usuario admin -password admin123 -rol admin
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"cochera/internal/config"
	"cochera/internal/infra"
	"cochera/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	usuario := flag.String("usuario", "admin", "login del usuario")
	password := flag.String("password", "admin123", "contraseña")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	rol := flag.String("rol", model.RolAdmin, "trabajador | admin")
	flag.Parse()

	if *rol != model.RolAdmin && *rol != model.RolTrabajador {
		log.Fatal().Str("rol", *rol).Msg("rol inválido")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	login := strings.ToLower(strings.TrimSpace(*usuario))
	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO trabajadores (usuario, nombre, password_hash, rol, activo, created_at, updated_at)
		VALUES (?, ?, ?, ?, true, now(), now())
		ON CONFLICT (usuario) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = now()
	`, login, *nombre, string(hash), *rol)

	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado\n", login, *rol)
}
