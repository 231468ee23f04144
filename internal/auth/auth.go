package auth

// TokenSource yields the bearer token sent to the catalog backend.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a pre-issued token, typically read from the environment.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	return string(t), nil
}
