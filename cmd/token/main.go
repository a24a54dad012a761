// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tasktrack/tasktrack-api/internal/auth"
	"github.com/tasktrack/tasktrack-api/internal/config"
	"github.com/tasktrack/tasktrack-api/internal/user"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to YAML config file")
		generateKeys = flag.Bool("generate-keys", false, "write a new key pair before signing")
		subject      = flag.String("subject", "", "token subject, usually the operator name")
		role         = flag.String("role", string(user.RoleAdmin), "role claim")
		ttl          = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	if err := run(*configPath, *generateKeys, *subject, *role, *ttl); err != nil {
		slog.Error("token error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, generateKeys bool, subject, roleName string, ttl time.Duration) error {
	if subject == "" {
		return fmt.Errorf("-subject is required")
	}

	role, err := user.ParseRole(roleName)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if generateKeys {
		if err := auth.GenerateKeyPair(
			cfg.JWT.PrivateKeyPath,
			cfg.JWT.PublicKeyPath,
		); err != nil {
			return err
		}
		slog.Info("key pair written",
			"private_key", cfg.JWT.PrivateKeyPath,
			"public_key", cfg.JWT.PublicKeyPath,
		)
	}

	manager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}

	token, err := manager.CreateAccessToken(auth.AccessTokenClaims{
		Subject: subject,
		Role:    role.String(),
		TTL:     ttl,
	})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
