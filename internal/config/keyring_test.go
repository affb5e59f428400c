package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringManager_SaveGetDelete(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager()

	assert.True(t, km.IsAvailable())

	password, err := km.GetNeo4jPassword()
	require.NoError(t, err)
	assert.Empty(t, password)

	require.NoError(t, km.SaveNeo4jPassword("s3cret-pass"))
	password, err = km.GetNeo4jPassword()
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", password)

	require.NoError(t, km.DeleteNeo4jPassword())
	password, err = km.GetNeo4jPassword()
	require.NoError(t, err)
	assert.Empty(t, password)

	// already gone
	assert.NoError(t, km.DeleteNeo4jPassword())
}

func TestKeyringManager_RejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, NewKeyringManager().SaveNeo4jPassword(""))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("short"))
	assert.Equal(t, "******ss", MaskSecret("a-long-pass"))
}

func newTestCredentialManager(mode DeploymentMode, input string, interactive bool) *CredentialManager {
	return &CredentialManager{
		mode:        mode,
		keyring:     NewKeyringManager(),
		input:       strings.NewReader(input),
		interactive: func() bool { return interactive },
	}
}

func TestResolveNeo4jPassword(t *testing.T) {
	t.Run("config wins", func(t *testing.T) {
		keyring.MockInit()
		require.NoError(t, NewKeyringManager().SaveNeo4jPassword("from-keychain"))

		cfg := Default()
		cfg.Neo4j.Password = "from-config"
		source, err := newTestCredentialManager(ModeDevelopment, "", true).ResolveNeo4jPassword(cfg, true)
		require.NoError(t, err)
		assert.Equal(t, PasswordFromConfig, source)
		assert.Equal(t, "from-config", cfg.Neo4j.Password)
	})

	t.Run("keychain", func(t *testing.T) {
		keyring.MockInit()
		require.NoError(t, NewKeyringManager().SaveNeo4jPassword("from-keychain"))

		cfg := Default()
		cfg.Neo4j.Password = ""
		source, err := newTestCredentialManager(ModeProduction, "", false).ResolveNeo4jPassword(cfg, false)
		require.NoError(t, err)
		assert.Equal(t, PasswordFromKeychain, source)
		assert.Equal(t, "from-keychain", cfg.Neo4j.Password)
	})

	t.Run("prompt saves to keychain", func(t *testing.T) {
		keyring.MockInit()

		cfg := Default()
		cfg.Neo4j.Password = ""
		source, err := newTestCredentialManager(ModeDevelopment, "typed-pass\n", true).ResolveNeo4jPassword(cfg, true)
		require.NoError(t, err)
		assert.Equal(t, PasswordFromPrompt, source)
		assert.Equal(t, "typed-pass", cfg.Neo4j.Password)

		stored, err := NewKeyringManager().GetNeo4jPassword()
		require.NoError(t, err)
		assert.Equal(t, "typed-pass", stored)
	})

	t.Run("no prompt outside development", func(t *testing.T) {
		keyring.MockInit()

		cfg := Default()
		cfg.Neo4j.Password = ""
		source, err := newTestCredentialManager(ModeProduction, "typed-pass\n", true).ResolveNeo4jPassword(cfg, true)
		require.NoError(t, err)
		assert.Equal(t, PasswordNotFound, source)
		assert.Empty(t, cfg.Neo4j.Password)
	})

	t.Run("no prompt when disallowed", func(t *testing.T) {
		keyring.MockInit()

		cfg := Default()
		cfg.Neo4j.Password = ""
		source, err := newTestCredentialManager(ModeDevelopment, "typed-pass\n", true).ResolveNeo4jPassword(cfg, false)
		require.NoError(t, err)
		assert.Equal(t, PasswordNotFound, source)
	})
}
