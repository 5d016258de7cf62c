package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"chatcheck/internal/auth"
	"chatcheck/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApps = `
- app_id: crm-app
  app_name: CRM Application
  role_priority: application
  roles: [crm_visit_report, products_search]
  roles_test:
    crm_visit_report:
      lang: fr
  subscription_key: sub-crm
  country: FR
  oauth:
    tenant_id: tenant-1
    scope: api://chatbot/.default
    client_id_env: CRM_CLIENT_ID
    client_secret_env: CRM_CLIENT_SECRET
- app_id: chatbot-app
  app_name: Chatbot Application
  role_priority: application
  roles: [get_answer_stream]
  subscription_key: sub-chatbot
  fetch_history: true
  mutualize: true
  mutualize_with: crm-app
  oauth:
    tenant_id: tenant-1
    scope: api://chatbot/.default
    client_id_env: CHATBOT_CLIENT_ID
    client_secret_env: CHATBOT_CLIENT_SECRET
`

func writeApps(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	path := writeApps(t, testApps)

	out, err := runCommand(t, "validate", "--apps", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 identities valid")
}

func TestValidateCommandBadSource(t *testing.T) {
	path := writeApps(t, `
- app_id: broken
  app_name: Broken
  role_priority: nonsense
  roles: [x]
  subscription_key: k
  oauth: {tenant_id: t, scope: s}
`)

	_, err := runCommand(t, "validate", "--apps", path)
	require.Error(t, err)

	var valErr *registry.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "role_priority", valErr.Field)
	assert.Equal(t, ExitCodeConfigInvalid, getExitCode(err))
}

func TestAppsCommandFiltersByRole(t *testing.T) {
	path := writeApps(t, testApps)

	out, err := runCommand(t, "apps", "--apps", path, "--role", "get_answer_stream")
	require.NoError(t, err)
	assert.Contains(t, out, "chatbot-app")
	assert.NotContains(t, out, "crm-app")
	assert.Contains(t, out, "1 identities")

	// The listing shows env variable names, never secret values.
	assert.NotContains(t, out, "CHATBOT_CLIENT_SECRET")
}

func TestAppsCommandRejectsBadPriority(t *testing.T) {
	path := writeApps(t, testApps)

	_, err := runCommand(t, "apps", "--apps", path, "--priority", "superuser")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "superuser")
}

func TestPairsCommand(t *testing.T) {
	path := writeApps(t, testApps)

	out, err := runCommand(t, "pairs", "--apps", path)
	require.NoError(t, err)
	assert.Contains(t, out, "crm-app")
	assert.Contains(t, out, "chatbot-app")
}

func TestPairsCommandNoLinks(t *testing.T) {
	path := writeApps(t, `
- app_id: lonely-app
  app_name: Lonely
  role_priority: application
  roles: [chatbot_expert]
  subscription_key: sub
  oauth:
    tenant_id: tenant-1
    scope: api://chatbot/.default
    client_id_env: CID
    client_secret_env: SECRET
`)

	out, err := runCommand(t, "pairs", "--apps", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no mutualization pairs")
}

func TestTokenCommandMockMode(t *testing.T) {
	path := writeApps(t, testApps)
	t.Setenv("API_BASE_URL", "http://localhost:9999")
	t.Setenv("MOCK_AUTH", "true")

	out, err := runCommand(t, "token", "--apps", path, "crm-app")
	require.NoError(t, err)
	assert.Contains(t, out, "crm-app")
	assert.Contains(t, out, "mock")
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "mock-token", "the raw token value must never be printed")
}

func TestTokenCommandUnknownIdentity(t *testing.T) {
	path := writeApps(t, testApps)
	t.Setenv("API_BASE_URL", "http://localhost:9999")
	t.Setenv("MOCK_AUTH", "true")

	_, err := runCommand(t, "token", "--apps", path, "ghost-app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost-app")
}

func TestTokenCommandAuthFailureExitCode(t *testing.T) {
	path := writeApps(t, testApps)
	t.Setenv("API_BASE_URL", "http://localhost:9999")
	t.Setenv("AZURE_TENANT_ID", "tenant-1")
	t.Setenv("MOCK_AUTH", "false")
	t.Setenv("CRM_CLIENT_ID", "")
	t.Setenv("CRM_CLIENT_SECRET", "")

	_, err := runCommand(t, "token", "--apps", path, "crm-app")
	require.Error(t, err)

	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
}
