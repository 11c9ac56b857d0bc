package profile

import (
	"strings"

	"github.com/pitchsmith/pitchsmith/internal/models"
)

// BuildContext flattens a user's profile into a prompt-ready text block of
// labeled lines. Absent fields are omitted. The field order is fixed and must
// never vary: downstream prompt diffing depends on it.
func BuildContext(u *models.User) string {
	if u == nil {
		return ""
	}

	var b strings.Builder
	appendLine(&b, "Name", u.Name)
	appendLine(&b, "Profession", u.Profession)
	appendLine(&b, "Skills", strings.Join(u.SkillList(), ", "))
	appendLine(&b, "Background", u.Experience)
	appendLine(&b, "Preferred writing style", u.PreferredStyle)
	appendLine(&b, "Portfolio", u.PortfolioURL)
	appendLine(&b, "Platforms", strings.Join(u.PlatformList(), ", "))
	return strings.TrimRight(b.String(), "\n")
}

// Complete reports whether the profile carries enough substance to ground a
// generation. Generation requires a profession plus either skills or a
// background description.
func Complete(u *models.User) bool {
	if u == nil {
		return false
	}
	if strings.TrimSpace(u.Profession) == "" {
		return false
	}
	return len(u.SkillList()) > 0 || strings.TrimSpace(u.Experience) != ""
}

// appendLine writes a "Label: value" line, skipping empty values.
func appendLine(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
