package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/cmd/auth"
	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/clitest"
	"financemonkey/fm-cli/internal/googleauth"
)

func TestLogin_Success(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)
	h.API.AddUser("Ada", "ada@example.com", "correct-horse")

	out, err := h.Run("correct-horse\n", "auth", "login", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Signed in as ada@example.com.")

	sess := h.Session()
	assert.True(t, sess.IsAuthenticated())
	assert.NotEmpty(t, sess.Token())
	require.NotNil(t, sess.User())
	assert.Equal(t, "Ada", sess.User().Name)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		stdin     string
		wantMsg   string
		wantCalls int
	}{
		{
			name:      "wrong password",
			args:      []string{"--email", "ada@example.com", "--password", "wrong-horse"},
			wantMsg:   "Invalid email or password",
			wantCalls: 1,
		},
		{
			name:      "unknown user",
			args:      []string{"--email", "bob@example.com", "--password", "correct-horse"},
			wantMsg:   "Invalid email or password",
			wantCalls: 1,
		},
		{
			name:    "missing email is not sent",
			stdin:   "correct-horse\n",
			wantMsg: "email: Email is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := clitest.New(t, auth.NewCommand)
			h.API.AddUser("Ada", "ada@example.com", "correct-horse")

			_, err := h.Run(tt.stdin, append([]string{"auth", "login"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.wantCalls, h.API.CallCount("POST", "/auth/login"))
			assert.False(t, h.Session().IsAuthenticated())
		})
	}
}

func TestLogin_WrongPasswordKeepsHTTPError(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)
	h.API.AddUser("Ada", "ada@example.com", "correct-horse")

	_, err := h.Run("", "auth", "login", "-e", "ada@example.com", "-p", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.True(t, apierror.IsStatus(err, 401))
	assert.Zero(t, h.API.CallCount("POST", "/auth/refresh-token"))
}

func TestLogin_SignedInShowsDashboard(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)
	h.SignIn("ada@example.com")
	h.API.Lock()
	h.API.Summary.Balance = decimal.RequireFromString("120.50")
	h.API.Unlock()

	out, err := h.Run("", "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Already signed in as ada@example.com.")
	assert.Contains(t, out, "120.50")
	assert.Zero(t, h.API.CallCount("POST", "/auth/login"))
	assert.Equal(t, 1, h.API.CallCount("GET", "/dashboard/summary"))
}

func TestRegister(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)

	out, err := h.Run("longenough\nlongenough\n", "auth", "register", "--name", "Ada", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Registration successful")
	assert.Contains(t, out, "--email ada@example.com")
	assert.True(t, h.API.HasUser("ada@example.com"))
	assert.False(t, h.Session().IsAuthenticated(), "registering does not sign in")
}

func TestRegister_Validation(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)

	_, err := h.Run("", "auth", "register", "-n", "Ada", "-e", "not-an-email", "-p", "short", "--confirm-password", "other")
	require.Error(t, err)

	var validation *apierror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Invalid email address", validation.Fields["email"])
	assert.Equal(t, "Password must be at least 8 characters", validation.Fields["password"])
	assert.Equal(t, "Passwords do not match", validation.Fields["confirmPassword"])
	assert.Zero(t, h.API.CallCount("POST", "/auth/register"))
}

func TestRegister_Duplicate(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)
	h.API.AddUser("Ada", "ada@example.com", "correct-horse")

	_, err := h.Run("", "auth", "register", "-n", "Ada", "-e", "ada@example.com", "-p", "longenough", "--confirm-password", "longenough")
	require.Error(t, err)
	assert.Equal(t, "Email is already registered", err.Error())
}

func TestLogout(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)

	out, err := h.Run("", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	h.SignIn("ada@example.com")
	out, err = h.Run("", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.NoFileExists(t, h.SessionFile())
	assert.False(t, h.Session().IsAuthenticated())
}

func TestStatus(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)

	out, err := h.Run("", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in:")
	assert.Contains(t, out, "no")
	assert.Contains(t, out, h.API.BaseURL())

	h.SignIn("ada@example.com")
	out, err = h.Run("", "auth", "status", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Authenticated bool   `json:"authenticated"`
		Email         string `json:"email"`
		APIURL        string `json:"apiUrl"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Authenticated)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, h.API.BaseURL(), got.APIURL)
}

func TestGoogle_NotConfigured(t *testing.T) {
	h := clitest.New(t, auth.NewCommand)

	_, err := h.Run("", "auth", "google")
	require.Error(t, err)
	assert.ErrorIs(t, err, googleauth.ErrNotConfigured)
	assert.Zero(t, h.API.CallCount("POST", "/auth/google"))
}
