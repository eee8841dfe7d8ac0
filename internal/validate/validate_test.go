package validate

import (
	"strings"
	"testing"

	"github.com/pribylovaa/comments-web/internal/models"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want string
	}{
		{"alice", ""},
		{"Alice2024", ""},
		{strings.Repeat("a", 20), ""},
		{"", "Username is required"},
		{"   ", "Username is required"},
		{"ali", "Username must be between 5-20 characters"},
		{strings.Repeat("a", 21), "Username must be between 5-20 characters"},
		{"alice_01", "Username can only contain letters and numbers"},
		{"al ice", "Username can only contain letters and numbers"},
		{"алиса12", "Username can only contain letters and numbers"},
		{"  alice", "Username can only contain letters and numbers"},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, Username(tc.in), "input %q", tc.in)
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want string
	}{
		{"Passw0rd!", ""},
		{"Aa1!Aa1!", ""},
		{"", "Password is required"},
		{"Aa1!", "Password must be between 8-20 characters"},
		{"Aa1!" + strings.Repeat("x", 17), "Password must be between 8-20 characters"},
		{"password1!", "Password must contain at least one uppercase, one lowercase, one number and one special character"},
		{"PASSWORD1!", "Password must contain at least one uppercase, one lowercase, one number and one special character"},
		{"Password!!", "Password must contain at least one uppercase, one lowercase, one number and one special character"},
		{"Password11", "Password must contain at least one uppercase, one lowercase, one number and one special character"},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, Password(tc.in), "input %q", tc.in)
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	ok := []string{"a@b.c", "john.doe+tag@example.co.uk", "x@y.z.w"}
	for _, s := range ok {
		require.Empty(t, Email(s), "input %q", s)
	}

	bad := []string{"plain", "a@b", "@b.c", "a@.c", "a b@c.d", "a@b.", "a@@b.c"}
	for _, s := range bad {
		require.Equal(t, "Invalid email format", Email(s), "input %q", s)
	}

	require.Equal(t, "Email is required", Email("  "))
}

func TestRegister_CollectsAllFields(t *testing.T) {
	t.Parallel()

	errs := Register(models.RegisterForm{Username: "ab", Email: "nope", Password: "weak"})
	require.Len(t, errs, 3)
	require.Contains(t, errs, FieldUsername)
	require.Contains(t, errs, FieldEmail)
	require.Contains(t, errs, FieldPassword)

	errs = Register(models.RegisterForm{Username: "alice1", Email: "alice@example.com", Password: "Passw0rd!"})
	require.Empty(t, errs)
}

func TestLogin_OnlyNonEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Login(models.LoginForm{Identifier: "a", Password: "x"}))

	errs := Login(models.LoginForm{Identifier: "  ", Password: ""})
	require.Equal(t, "Username or email is required", errs[FieldIdentifier])
	require.Equal(t, "Password is required", errs[FieldPassword])
}

func TestComment_RuneLength(t *testing.T) {
	t.Parallel()

	require.Empty(t, Comment(models.CommentForm{Content: "hey"}))
	require.Empty(t, Comment(models.CommentForm{Content: strings.Repeat("ж", 200)}))
	require.NotEmpty(t, Comment(models.CommentForm{Content: "hi"}))
	require.NotEmpty(t, Comment(models.CommentForm{Content: strings.Repeat("a", 201)}))
}
