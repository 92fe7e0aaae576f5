package backend

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/identity"
)

// UserRegister creates a customer account. The response body carries no
// state the front end needs; login follows as a separate step.
func (c *Client) UserRegister(ctx context.Context, username, password, phone string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("username", func(e *jx.Encoder) { e.Str(username) })
		e.Field("password", func(e *jx.Encoder) { e.Str(password) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(phone) })
	})
	_, err := c.do(ctx, http.MethodPost, "/auth/user/register", "", e.Bytes())
	return err
}

// UserLogin authenticates a customer and returns their identity record.
// The backend may omit the username in its response; the submitted one is
// kept as the display name in that case.
func (c *Client) UserLogin(ctx context.Context, username, password string) (*identity.Customer, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/user/login", "", encodeCredentials(username, password))
	if err != nil {
		return nil, err
	}

	var cust identity.Customer
	if err := decodeTokenResponse(data, "userId", &cust.Token, &cust.UserID, &cust.Username); err != nil {
		return nil, err
	}
	if cust.Username == "" {
		cust.Username = username
	}
	return &cust, nil
}

// MerchantRegister creates a merchant account with its store name.
func (c *Client) MerchantRegister(ctx context.Context, username, password, storeName string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("username", func(e *jx.Encoder) { e.Str(username) })
		e.Field("password", func(e *jx.Encoder) { e.Str(password) })
		e.Field("storeName", func(e *jx.Encoder) { e.Str(storeName) })
	})
	_, err := c.do(ctx, http.MethodPost, "/auth/merchant/register", "", e.Bytes())
	return err
}

// MerchantLogin authenticates a merchant and returns their identity record.
func (c *Client) MerchantLogin(ctx context.Context, username, password string) (*identity.Merchant, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/merchant/login", "", encodeCredentials(username, password))
	if err != nil {
		return nil, err
	}

	var m identity.Merchant
	if err := decodeTokenResponse(data, "merchantId", &m.Token, &m.MerchantID, &m.Username); err != nil {
		return nil, err
	}
	if m.Username == "" {
		m.Username = username
	}
	return &m, nil
}

func encodeCredentials(username, password string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("username", func(e *jx.Encoder) { e.Str(username) })
		e.Field("password", func(e *jx.Encoder) { e.Str(password) })
	})
	return e.Bytes()
}

// decodeTokenResponse reads a login response: the bearer token, the subject
// id under idKey, and an optional username. A response without a token is a
// shape error, not a usable identity.
func decodeTokenResponse(data []byte, idKey string, token *string, id *int, username *string) error {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return &FormatError{Reason: "login response is not an object"}
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "token":
			*token, err = d.Str()
		case idKey:
			*id, err = d.Int()
		case "username":
			*username, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return wrapFormat("decode login response", err)
	}
	if *token == "" {
		return &FormatError{Reason: "login response has no token"}
	}
	return nil
}
