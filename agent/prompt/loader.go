package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
)

var (
	//go:embed template/guest.txt
	guestRaw string

	//go:embed template/staff.txt
	staffRaw string
)

// System renders the role-and-identity-specific instruction message that
// seeds every exchange. Staff callers get the guest prompt plus the staff
// addendum. Safe to call concurrently; the embeds are compile-time.
func System(id contractx.Identity) string {
	base := strings.NewReplacer(
		"{{name}}", id.Name,
		"{{role}}", strings.ToUpper(string(id.Role)),
	).Replace(strings.TrimSpace(guestRaw))

	if id.Role != contractx.RoleStaff {
		return base
	}
	return base + "\n\n" + strings.TrimSpace(staffRaw)
}
