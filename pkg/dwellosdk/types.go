package dwellosdk

// Envelope wraps every non-auth response.
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success          bool         `json:"success"`
	ErrorMessage     string       `json:"error_message"`
	ValidationErrors []FieldError `json:"validation_errors,omitempty"`
}

// FieldError names the offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and registration. Token goes in the
// X-API-Key header of later requests.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// MeResponse describes the caller.
type MeResponse struct {
	Role string `json:"role"`
	User User   `json:"user"`
}

type CreateUserRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

type ProfileRequest struct {
	Title string `json:"title"`
	Intro string `json:"intro"`
	Body  string `json:"body"`
}

type Profile struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Intro     string `json:"intro"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateDealRequest struct {
	BuyerID string  `json:"buyer_id"`
	Address string  `json:"address"`
	Lat     *string `json:"lat,omitempty"`
	Lon     *string `json:"lon,omitempty"`
}

// UpdateDealRequest leaves absent fields unchanged.
type UpdateDealRequest struct {
	Status   *string `json:"status,omitempty"`
	SellerID *string `json:"seller_id,omitempty"`
}

type Deal struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	AccessCode string  `json:"access_code"`
	BuyerID    *string `json:"buyer_id"`
	SellerID   *string `json:"seller_id"`
	HouseID    *string `json:"house_id"`
	Address    string  `json:"address"`
	Lat        *string `json:"lat"`
	Lon        *string `json:"lon"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// Deal statuses, in order.
const (
	DealStatusInitialized = "initialized"
	DealStatusMailerSent  = "mailer_sent"
)

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Throttle string `json:"throttle,omitempty"`
}
