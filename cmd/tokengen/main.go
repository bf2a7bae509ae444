// Command tokengen mints issuer access tokens for development and testing.
// Production deployments are expected to issue tokens from their identity
// provider; this tool only exists so a local stack is usable out of the box.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "certreg/internal/jwt_token"
	"certreg/internal/platform/config"
	id "certreg/pkg/domain"
)

func main() {
	identityFlag := flag.String("identity", "", "issuer identity to assert (required)")
	ttlFlag := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	flag.Parse()

	cfg := config.FromEnv()

	identity, err := id.ParseIdentity(*identityFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -identity: %v\n", err)
		os.Exit(2)
	}

	ttl := *ttlFlag
	if ttl <= 0 {
		ttl = cfg.TokenTTL
	}

	svc := jwttoken.NewJWTService(cfg.JWTSigningKey, "certreg", "certreg-api")
	token, err := svc.GenerateIssuerToken(identity, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	out := map[string]string{
		"identity":   identity.String(),
		"token":      token,
		"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}
