package dto

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RequestEmail struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token         string `json:"token"`
	Password      string `json:"password"`
	PasswordCheck string `json:"password_check"`
	TempCode      string `json:"temp_code"`
}

type Message struct {
	Message string `json:"message"`
}
