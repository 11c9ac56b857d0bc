package profile

import (
	"strings"
	"testing"

	"github.com/pitchsmith/pitchsmith/internal/models"
)

func TestBuildContextFixedOrder(t *testing.T) {
	user := &models.User{
		Name:           "Jordan",
		Profession:     "developer",
		Skills:         models.EncodeStringList([]string{"Go", "Postgres"}),
		Experience:     "8 years of backend work",
		PreferredStyle: "technical",
		PortfolioURL:   "https://example.com",
		Platforms:      models.EncodeStringList([]string{"Upwork"}),
	}

	got := BuildContext(user)
	want := strings.Join([]string{
		"Name: Jordan",
		"Profession: developer",
		"Skills: Go, Postgres",
		"Background: 8 years of backend work",
		"Preferred writing style: technical",
		"Portfolio: https://example.com",
		"Platforms: Upwork",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected context:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildContextOmitsEmptyFields(t *testing.T) {
	user := &models.User{Profession: "designer"}
	got := BuildContext(user)
	if got != "Profession: designer" {
		t.Fatalf("expected single line, got %q", got)
	}
	if BuildContext(nil) != "" {
		t.Fatalf("expected empty context for nil user")
	}
}

func TestCompleteRequiresProfessionPlusSubstance(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		want bool
	}{
		{"nil user", nil, false},
		{"empty", &models.User{}, false},
		{"profession only", &models.User{Profession: "writer"}, false},
		{"profession and skills", &models.User{
			Profession: "writer",
			Skills:     models.EncodeStringList([]string{"copywriting"}),
		}, true},
		{"profession and experience", &models.User{
			Profession: "writer",
			Experience: "5 years of blog writing",
		}, true},
		{"skills without profession", &models.User{
			Skills: models.EncodeStringList([]string{"copywriting"}),
		}, false},
	}
	for _, tc := range cases {
		if got := Complete(tc.user); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
