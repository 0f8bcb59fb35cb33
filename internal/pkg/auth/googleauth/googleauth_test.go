package googleauth

import (
	"strings"
	"testing"
)

func TestSuggestedUsername(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Hatsune Miku":   "Hatsune Miku",
		"  Miku!@#$%  ":  "Miku",
		"名前 Miku":        "Miku",
		"":               "user",
		"!!!":            "user",
		strings.Repeat("a", 40): strings.Repeat("a", 30),
	}

	for in, want := range cases {
		if got := SuggestedUsername(in); got != want {
			t.Errorf("SuggestedUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuthCodeURL(t *testing.T) {
	t.Parallel()

	c := New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://chat.example.com/api/auth/google/callback",
	})

	u := c.AuthCodeURL("state-123")
	for _, fragment := range []string{"client_id=client-id", "state=state-123", "redirect_uri="} {
		if !strings.Contains(u, fragment) {
			t.Errorf("auth URL missing %q: %s", fragment, u)
		}
	}
}
