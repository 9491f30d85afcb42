package domain

import "strings"

// Credential authenticates one seller account on one platform. The set of
// implementations is closed: WildberriesCredential and OzonCredential.
type Credential interface {
	Platform() Platform
	// ShopID identifies the account in ledger records and logs.
	ShopID() string
	// Blank reports whether a required field is missing.
	Blank() bool
	sealed()
}

// WildberriesCredential is a single bearer-like token.
type WildberriesCredential struct {
	Name  string
	Token string
}

func (WildberriesCredential) Platform() Platform { return PlatformWildberries }

func (c WildberriesCredential) ShopID() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return "Default"
}

func (c WildberriesCredential) Blank() bool {
	return strings.TrimSpace(c.Token) == ""
}

func (WildberriesCredential) sealed() {}

// OzonCredential is a tenant identifier plus API secret.
type OzonCredential struct {
	ClientID string
	APIKey   string
}

func (OzonCredential) Platform() Platform { return PlatformOzon }

func (c OzonCredential) ShopID() string { return c.ClientID }

func (c OzonCredential) Blank() bool {
	return strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.APIKey) == ""
}

func (OzonCredential) sealed() {}
