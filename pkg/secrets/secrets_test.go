package secrets_test

import (
	"testing"

	"certreg/pkg/secrets"
	"certreg/pkg/testutil"

	dErrors "certreg/pkg/domain-errors"
)

func TestOwnerTokenLifecycle(t *testing.T) {
	testutil.Given(t, "a generated owner token", func(t *testing.T) {
		token, err := secrets.Generate()
		if err != nil {
			t.Fatalf("generate secret: %v", err)
		}
		if token == "" {
			t.Fatal("generated secret is empty")
		}

		testutil.When(t, "it is hashed for storage", func(t *testing.T) {
			hash, err := secrets.Hash(token)
			if err != nil {
				t.Fatalf("hash secret: %v", err)
			}

			testutil.Then(t, "the original token verifies", func(t *testing.T) {
				if err := secrets.Verify(token, hash); err != nil {
					t.Fatalf("verify secret: %v", err)
				}
			})

			testutil.Then(t, "a different token is rejected", func(t *testing.T) {
				err := secrets.Verify("wrong-token", hash)
				if err == nil {
					t.Fatal("expected verification to fail")
				}
				if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
					t.Fatalf("expected invalid input code, got %v", err)
				}
			})
		})
	})
}

func TestHashRejectsEmptySecret(t *testing.T) {
	_, err := secrets.Hash("")
	if err == nil {
		t.Fatal("expected error for empty secret")
	}
	if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input code, got %v", err)
	}
}

func TestGenerateProducesUniqueTokens(t *testing.T) {
	a, err := secrets.Generate()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	b, err := secrets.Generate()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct secrets from consecutive generations")
	}
}
