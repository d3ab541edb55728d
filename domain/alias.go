package domain

import "strings"

// aliasLabel namespaces phone-derived aliases under the alias domain so
// they can never collide with a real mailbox address.
const aliasLabel = "@phone."

// PhoneAlias derives the platform identifier for a phone number. The
// platform only accepts email-shaped identifiers, so the phone is encoded
// as "<phone>@phone.<domain>". The function is pure: resolution re-derives
// the alias instead of relying on a stored mapping being present.
func PhoneAlias(phone, domain string) string {
	return phone + aliasLabel + domain
}

// PhoneFromAlias inverts PhoneAlias. It returns the empty string when the
// alias was not produced by PhoneAlias for the given domain.
func PhoneFromAlias(alias, domain string) string {
	suffix := aliasLabel + domain
	if !strings.HasSuffix(alias, suffix) {
		return ""
	}
	phone := strings.TrimSuffix(alias, suffix)
	if phone == "" {
		return ""
	}
	return phone
}
