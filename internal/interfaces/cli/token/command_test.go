package token

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/infrastructure/auth"
)

func TestMint(t *testing.T) {
	svc := auth.NewJWTService("secret", 30)

	var buf bytes.Buffer
	require.NoError(t, mint(&buf, svc, "ops", auth.RoleAdmin, 0))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "# expires "))

	claims, err := svc.Verify(lines[0])
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "ops", claims.Subject)
}

func TestMint_RequiresSubject(t *testing.T) {
	err := mint(&bytes.Buffer{}, auth.NewJWTService("secret", 30), "", auth.RoleAdmin, 0)
	assert.Error(t, err)
}
