package dto

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateDomainRequest struct {
	Name        string  `json:"name"`
	Extension   string  `json:"extension"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
}

type CheckoutRequest struct {
	DomainID string            `json:"domain_id"`
	Currency string            `json:"currency,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ReleaseEscrowRequest struct {
	TransferConfirmed bool   `json:"transfer_confirmed"`
	Code              string `json:"code,omitempty"`
	BackupCode        string `json:"backup_code,omitempty"`
}

type CreateTransactionRequest struct {
	DomainID      string `json:"domain_id"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type CompleteTransactionRequest struct {
	Code       string `json:"code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
}

type UpdateTransactionStatusRequest struct {
	Status     string `json:"status"`
	Note       string `json:"note,omitempty"`
	Code       string `json:"code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
}

type AppendMessageRequest struct {
	Role string `json:"role,omitempty"` // defaults to user
	Body string `json:"body"`
}

type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

type TwoFactorDisableRequest struct {
	Password   string `json:"password"`
	Code       string `json:"code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
}
