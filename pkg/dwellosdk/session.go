package dwellosdk

import (
	"context"
	"net/http"
	"net/url"
)

// Session is an authenticated client. Tokens do not expire; a session is only
// invalidated by the next login of the same user.
type Session struct {
	client *Client
	token  string
	user   User
}

// NewSession wraps an existing token. user may be the zero value.
func (c *Client) NewSession(token string, user User) *Session {
	return &Session{client: c, token: token, user: user}
}

func (s *Session) Token() string { return s.token }

// User is the account the session was issued for.
func (s *Session) User() User { return s.user }

// call sends an authenticated request and unwraps the envelope.
func call[T any](ctx context.Context, s *Session, method, path string, body any, expected int) (T, error) {
	var env Envelope[T]
	err := s.client.do(ctx, method, path, s.token, body, &env, expected)
	return env.Data, err
}

func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	out, err := call[MeResponse](ctx, s, http.MethodGet, "/v1/me", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	return call[[]User](ctx, s, http.MethodGet, "/v1/users", nil, http.StatusOK)
}

func (s *Session) GetUser(ctx context.Context, id string) (*User, error) {
	out, err := call[User](ctx, s, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	out, err := call[User](ctx, s, http.MethodPost, "/v1/users", req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateProfile(ctx context.Context, userID string, req ProfileRequest) (*Profile, error) {
	out, err := call[Profile](ctx, s, http.MethodPost, profilePath(userID), req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProfile(ctx context.Context, userID string, req ProfileRequest) (*Profile, error) {
	out, err := call[Profile](ctx, s, http.MethodPut, profilePath(userID), req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	out, err := call[Profile](ctx, s, http.MethodGet, profilePath(userID), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDeals lists visible deals. buyerID may be empty.
func (s *Session) ListDeals(ctx context.Context, buyerID string) ([]Deal, error) {
	path := "/v1/deals"
	if buyerID != "" {
		path += "?" + url.Values{"buyer_id": {buyerID}}.Encode()
	}
	return call[[]Deal](ctx, s, http.MethodGet, path, nil, http.StatusOK)
}

func (s *Session) CreateDeal(ctx context.Context, req CreateDealRequest) (*Deal, error) {
	out, err := call[Deal](ctx, s, http.MethodPost, "/v1/deals", req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetDeal(ctx context.Context, id string) (*Deal, error) {
	out, err := call[Deal](ctx, s, http.MethodGet, "/v1/deals/"+url.PathEscape(id), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateDeal(ctx context.Context, id string, req UpdateDealRequest) (*Deal, error) {
	out, err := call[Deal](ctx, s, http.MethodPut, "/v1/deals/"+url.PathEscape(id), req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DealsWithHouses is the caller's buyer dashboard.
func (s *Session) DealsWithHouses(ctx context.Context) ([]Deal, error) {
	return call[[]Deal](ctx, s, http.MethodGet, "/v1/views/deals-with-houses", nil, http.StatusOK)
}

func profilePath(userID string) string {
	return "/v1/users/" + url.PathEscape(userID) + "/profile"
}
