package dto

// ── 管理 Token DTO ──

// TokenInfoResponse 当前 Token 信息
type TokenInfoResponse struct {
	Subject   string `json:"subject"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}
