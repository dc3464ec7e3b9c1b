package handler

import "strings"

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *registerRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type loginResponse struct {
	JWT string `json:"jwt"`
}

type errorResponse struct {
	Error string `json:"error"`
}
