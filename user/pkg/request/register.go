package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	Username string `validate:"required,min=3"  json:"username"`
	Email    string `validate:"required,email"  json:"email"`
	Password string `validate:"required,min=8"  json:"password"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("username", r.Username).Str("email", r.Email).Str("password", "***")
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R Register
	return json.Marshal(R(r))
}
