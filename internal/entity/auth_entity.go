package entity

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserSnapshot `json:"user"`
}

type TokenClaims struct {
	UserId int64  `json:"userId"`
	Email  string `json:"email"`
}
