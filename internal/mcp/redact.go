package mcp

import "github.com/abdul-hamid-achik/assetvault/internal/crypto"

// identity renders an address for tool output. With redaction on, only the
// first and last four characters are kept.
func (s *VaultMCPServer) identity(a crypto.Address) string {
	str := a.String()
	if !s.policy.RedactIdentities || len(str) <= 8 {
		return str
	}
	return str[:4] + "…" + str[len(str)-4:]
}
