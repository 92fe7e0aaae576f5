// Package identity models the authenticated actors of the two front ends.
//
// An identity is a token-bearing session record: the opaque bearer token the
// backend issued at login plus the subject's id and display name. Passwords
// are never stored; they pass through login requests and are forgotten.
package identity

// Customer identifies an authenticated customer on the customer front end.
type Customer struct {
	Token    string
	UserID   int
	Username string
}

// Merchant identifies an authenticated merchant on the merchant front end.
// Customer and Merchant identities are never mixed within one session.
type Merchant struct {
	Token      string
	MerchantID int
	Username   string
}
